package connect

import (
	"context"
)

// MeetingFolder resolves an operator-configured container name to a remote
// folder SCO. Both the id and the URL path resolve at most once per
// instance; a miss is cached as an empty value, never an error.
type MeetingFolder struct {
	Name string

	client *Client

	idResolved  bool
	id          string
	urlResolved bool
	urlPath     string
}

// NewMeetingFolder wraps a container name (the folder must already exist on
// the Connect server).
func NewMeetingFolder(name string, client *Client) *MeetingFolder {
	return &MeetingFolder{Name: name, client: client}
}

// ID returns the folder's SCO id, or "" if the user-meetings container or
// the named folder cannot be found.
func (f *MeetingFolder) ID(ctx context.Context) string {
	if f.idResolved {
		return f.id
	}
	f.idResolved = true

	container := f.client.ScoShortcuts(ctx).Find("//sco[@type='user-meetings']")
	if container == nil {
		return ""
	}

	listing := f.client.ScoExpandedContents(ctx, Params{
		"sco_id":      container.SelectAttrValue("sco-id", ""),
		"filter_name": f.Name,
	})
	if match := listing.Find("//sco"); match != nil {
		f.id = match.SelectAttrValue("sco-id", "")
	}
	return f.id
}

// URLPath returns the folder's URL path fragment, or "" on any lookup miss.
func (f *MeetingFolder) URLPath(ctx context.Context) string {
	if f.urlResolved {
		return f.urlPath
	}
	f.urlResolved = true

	if id := f.ID(ctx); id != "" {
		f.urlPath = f.client.ScoInfo(ctx, id).Text("//url-path")
	}
	return f.urlPath
}

// Contents lists the folder's direct children.
func (f *MeetingFolder) Contents(ctx context.Context) *Response {
	return f.client.ScoContents(ctx, Params{"sco_id": f.ID(ctx)})
}
