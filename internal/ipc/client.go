package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Stop requests the daemon to shut down.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Stagehand.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Stagehand.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SongList returns songs optionally filtered by stage.
func (c *Client) SongList(stages []string) (*SongListResponse, error) {
	var resp SongListResponse
	if err := c.client.Call("Stagehand.SongList", SongListRequest{Stages: stages}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SongAdd creates a new song in the draft stage.
func (c *Client) SongAdd(title, artist string) (*SongAddResponse, error) {
	var resp SongAddResponse
	if err := c.client.Call("Stagehand.SongAdd", SongAddRequest{Title: title, Artist: artist}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SongDescribe returns the detail view for one song.
func (c *Client) SongDescribe(id int64) (*SongDescribeResponse, error) {
	var resp SongDescribeResponse
	if err := c.client.Call("Stagehand.SongDescribe", SongDescribeRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Transition executes a pipeline stage transition.
func (c *Client) Transition(req TransitionIPCRequest) (*TransitionIPCResponse, error) {
	var resp TransitionIPCResponse
	if err := c.client.Call("Stagehand.Transition", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StageAct applies a per-stage status action.
func (c *Client) StageAct(req StageActRequest) (*StageActResponse, error) {
	var resp StageActResponse
	if err := c.client.Call("Stagehand.StageAct", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Checklist returns the checklist view for one song.
func (c *Client) Checklist(songID int64) (*ChecklistResponse, error) {
	var resp ChecklistResponse
	if err := c.client.Call("Stagehand.Checklist", ChecklistRequest{SongID: songID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChecklistAdd attaches a checklist item to a song's stage.
func (c *Client) ChecklistAdd(songID int64, stage, label string) (*ChecklistAddResponse, error) {
	var resp ChecklistAddResponse
	req := ChecklistAddRequest{SongID: songID, Stage: stage, Label: label}
	if err := c.client.Call("Stagehand.ChecklistAdd", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChecklistComplete toggles completion on a checklist item.
func (c *Client) ChecklistComplete(itemID int64, complete bool) (*ChecklistCompleteResponse, error) {
	var resp ChecklistCompleteResponse
	req := ChecklistCompleteRequest{ItemID: itemID, IsComplete: complete}
	if err := c.client.Call("Stagehand.ChecklistComplete", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History returns the transition history for one song.
func (c *Client) History(songID int64) (*HistoryResponse, error) {
	var resp HistoryResponse
	if err := c.client.Call("Stagehand.History", HistoryRequest{SongID: songID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AttachLink records a work, recording, or release reference on a song.
func (c *Client) AttachLink(songID int64, kind, ref string) (*AttachLinkResponse, error) {
	var resp AttachLinkResponse
	req := AttachLinkRequest{SongID: songID, Kind: kind, Ref: ref}
	if err := c.client.Call("Stagehand.AttachLink", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DatabaseHealth retrieves detailed database diagnostics.
func (c *Client) DatabaseHealth() (*DatabaseHealthResponse, error) {
	var resp DatabaseHealthResponse
	if err := c.client.Call("Stagehand.DatabaseHealth", DatabaseHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Stagehand.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
