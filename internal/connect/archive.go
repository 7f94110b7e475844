package connect

import (
	"context"

	"github.com/beevik/etree"
)

// MeetingArchive is one recorded session of a meeting. The remote id is
// read eagerly; every other attribute is fetched from the archive node on
// first access and cached per attribute.
type MeetingArchive struct {
	node  *etree.Element
	id    string
	attrs map[string]string
}

// RetrieveArchives lists the archive records under a meeting. An empty
// result set (or any soft failure) yields an empty slice.
func RetrieveArchives(ctx context.Context, client *Client, meetingID string) []*MeetingArchive {
	resp := client.ScoContents(ctx, Params{
		"sco_id":      meetingID,
		"filter_icon": "archive",
	})

	var archives []*MeetingArchive
	for _, node := range resp.FindAll("//scos/sco") {
		archives = append(archives, &MeetingArchive{
			node:  node,
			id:    node.SelectAttrValue("sco-id", ""),
			attrs: map[string]string{},
		})
	}
	return archives
}

// ID returns the archive's remote SCO id.
func (a *MeetingArchive) ID() string {
	return a.id
}

func (a *MeetingArchive) Name() string         { return a.attr("name") }
func (a *MeetingArchive) URLPath() string      { return a.attr("url_path") }
func (a *MeetingArchive) DateBegin() string    { return a.attr("date_begin") }
func (a *MeetingArchive) DateEnd() string      { return a.attr("date_end") }
func (a *MeetingArchive) DateModified() string { return a.attr("date_modified") }
func (a *MeetingArchive) Duration() string     { return a.attr("duration") }
func (a *MeetingArchive) DateCreated() string  { return a.attr("date_created") }

// attr resolves a snake_case attribute name to the dash-cased child element
// of the archive node, caching the text on first access.
func (a *MeetingArchive) attr(name string) string {
	if v, ok := a.attrs[name]; ok {
		return v
	}
	var v string
	if el := a.node.FindElement(dashCase(name)); el != nil {
		v = el.Text()
	}
	a.attrs[name] = v
	return v
}
