package conferences

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusbridge/connect/internal/connect"
	"github.com/campusbridge/connect/internal/models"
)

// ErrMeetingNotFound means the conference key could not be resolved: no
// child of the configured meeting folder carries the generated meeting name.
var ErrMeetingNotFound = errors.New("meeting not found")

// Store is the persistence the controller needs: saving a conference record
// after provisioning (conference key and settings bag included).
type Store interface {
	Save(ctx context.Context, conf *models.Conference) error
}

// PermissionChecker answers whether a user may initiate a given conference.
// The host LMS owns the authorization model; this is its boundary.
type PermissionChecker interface {
	CanInitiate(ctx context.Context, user *models.User, conf *models.Conference) (bool, error)
}

// Controller drives the conference lifecycle against Adobe Connect: ensure
// the remote meeting exists, grant host rights, compute join URLs, report
// status and recordings. State is derived from remote probes, never trusted
// from local caches.
type Controller struct {
	clients  *connect.Cache
	settings func() connect.Settings
	store    Store
	perms    PermissionChecker
	logger   *zap.Logger

	folder       *connect.MeetingFolder
	folderClient *connect.Client
}

// NewController wires the lifecycle controller.
func NewController(clients *connect.Cache, settings func() connect.Settings, store Store, perms PermissionChecker, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		clients:  clients,
		settings: settings,
		store:    store,
		perms:    perms,
		logger:   logger,
	}
}

// Initiate ensures the remote meeting exists and returns the conference
// key. Idempotent: the existence probe, not local state, decides whether a
// create request is issued, so a retry never creates a second meeting.
func (c *Controller) Initiate(ctx context.Context, conf *models.Conference) (string, error) {
	client, err := c.client(ctx)
	if err != nil {
		return "", err
	}

	if conf.ConferenceKey == "" {
		if !c.meetingExists(ctx, client, conf) {
			if err := c.createMeeting(ctx, client, conf); err != nil {
				return "", err
			}
		}
		if err := c.store.Save(ctx, conf); err != nil {
			return "", err
		}
	}

	key, err := c.findConferenceKey(ctx, client, conf)
	if err != nil {
		return "", err
	}
	if err := c.store.Save(ctx, conf); err != nil {
		return "", err
	}
	return key, nil
}

// Status derives the conference state from the remote existence probe.
// Local start/end timestamps never gate the answer.
func (c *Controller) Status(ctx context.Context, conf *models.Conference) (models.ConferenceStatus, error) {
	client, err := c.client(ctx)
	if err != nil {
		return models.ConferenceClosed, err
	}
	if c.meetingExists(ctx, client, conf) {
		return models.ConferenceActive, nil
	}
	return models.ConferenceClosed, nil
}

// AdminJoinURL provisions the user as a meeting host and returns their join
// URL. In SIS/SSO mode the bare meeting URL suffices (the server resolves
// identity from the account mapping); otherwise a session is opened as the
// derived principal and its token appended.
func (c *Controller) AdminJoinURL(ctx context.Context, conf *models.Conference, user *models.User) (string, error) {
	client, err := c.client(ctx)
	if err != nil {
		return "", err
	}

	principal, err := c.addHost(ctx, client, conf, user)
	if err != nil {
		return "", err
	}

	settings := c.settings()
	if settings.UseSISIDs {
		return c.meetingURL(conf), nil
	}

	login, err := principal.Username()
	if err != nil {
		return "", err
	}
	token, err := connect.UserSession(ctx, connect.Settings{
		Domain:   settings.Domain,
		Login:    login,
		Password: principal.Password(),
	}, c.logger)
	if err != nil {
		return "", err
	}
	return c.meetingURL(conf) + "?session=" + token, nil
}

// ParticipantJoinURL returns a join URL for a participant. Users holding
// the initiate capability join as hosts; everyone else joins as a guest
// (or bare URL in SSO mode).
func (c *Controller) ParticipantJoinURL(ctx context.Context, conf *models.Conference, user *models.User) (string, error) {
	ok, err := c.perms.CanInitiate(ctx, user, conf)
	if err != nil {
		return "", err
	}
	if ok {
		return c.AdminJoinURL(ctx, conf, user)
	}
	if c.settings().UseSISIDs {
		return c.meetingURL(conf), nil
	}
	return c.meetingURL(conf) + "?guestName=" + connect.Escape(user.FullName()), nil
}

// Recordings lists the conference's archives, making each publicly viewable
// before returning it. An unresolvable conference key yields an empty list.
func (c *Controller) Recordings(ctx context.Context, conf *models.Conference) ([]models.Recording, error) {
	client, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	key, err := c.findConferenceKey(ctx, client, conf)
	if err != nil {
		if errors.Is(err, ErrMeetingNotFound) {
			return []models.Recording{}, nil
		}
		return nil, err
	}

	domain := strings.TrimRight(c.settings().Domain, "/")
	archives := connect.RetrieveArchives(ctx, client, key)
	recordings := make([]models.Recording, 0, len(archives))
	for _, a := range archives {
		client.PermissionsUpdate(ctx, a.ID(), "public-access", "view-hidden")
		recordings = append(recordings, models.Recording{
			ConferenceID:    conf.ID,
			ScoID:           a.ID(),
			Title:           a.Name(),
			DurationMinutes: archiveDurationMinutes(a),
			PlaybackURL:     domain + a.URLPath(),
			CreatedAt:       parseConnectTime(a.DateCreated()),
			UpdatedAt:       parseConnectTime(a.DateModified()),
		})
	}
	return recordings, nil
}

// client returns the process-wide cached session client for the current
// settings snapshot.
func (c *Controller) client(ctx context.Context) (*connect.Client, error) {
	return c.clients.Get(ctx, c.settings())
}

// meetingFolder returns the resolver for the configured container, reusing
// it while both the container name and the session client are unchanged.
func (c *Controller) meetingFolder(client *connect.Client) *connect.MeetingFolder {
	container := c.settings().MeetingContainer
	if c.folder == nil || c.folder.Name != container || c.folderClient != client {
		c.folder = connect.NewMeetingFolder(container, client)
		c.folderClient = client
	}
	return c.folder
}

// meetingExists probes the remote server by URL suffix. The probe, not any
// cached affirmative, is authoritative.
func (c *Controller) meetingExists(ctx context.Context, client *connect.Client, conf *models.Conference) bool {
	return client.ScoByURL(ctx, c.meetingURLSuffix(conf)).OK()
}

// createMeeting issues the sco-update creating the remote meeting. On
// success the chosen URL suffix is recorded in the settings bag and the
// meeting made publicly viewable. A non-ok reply is logged; only a failure
// on the folder-id field is fatal.
func (c *Controller) createMeeting(ctx context.Context, client *connect.Client, conf *models.Conference) error {
	suffix := conf.Setting(models.SettingMeetingURLID)
	if suffix == "" {
		suffix = c.newMeetingURLID(conf)
	}

	params := connect.Params{
		"type":       "meeting",
		"name":       c.meetingName(conf),
		"folder_id":  c.meetingFolder(client).ID(ctx),
		"date_begin": conf.StartAt.Format(time.RFC3339),
		"url_path":   suffix,
	}
	if conf.EndAt != nil {
		params["date_end"] = conf.EndAt.Format(time.RFC3339)
	}

	resp := client.ScoUpdate(ctx, params)
	if !resp.OK() {
		field := resp.Attr("//invalid", "field")
		c.logger.Error("meeting create failed",
			zap.Int64("conference_id", conf.ID),
			zap.String("field", field),
			zap.String("subcode", resp.Attr("//invalid", "subcode")))
		if field == "folder-id" {
			return &connect.MeetingFolderError{Container: c.settings().MeetingContainer}
		}
		return nil
	}

	conf.SetSetting(models.SettingMeetingURLID, suffix)
	scoID := resp.Attr("//sco", "sco-id")
	client.PermissionsUpdate(ctx, scoID, "public-access", "view-hidden")
	return nil
}

// findConferenceKey resolves and caches the meeting's SCO id by searching
// the configured folder for a child named like this conference.
func (c *Controller) findConferenceKey(ctx context.Context, client *connect.Client, conf *models.Conference) (string, error) {
	if conf.ConferenceKey != "" {
		return conf.ConferenceKey, nil
	}

	name := c.meetingName(conf)
	listing := c.meetingFolder(client).Contents(ctx)
	for _, sco := range listing.FindAll("//sco") {
		if el := sco.FindElement("name"); el != nil && el.Text() == name {
			conf.ConferenceKey = sco.SelectAttrValue("sco-id", "")
			return conf.ConferenceKey, nil
		}
	}
	return "", fmt.Errorf("conference %d (%s): %w", conf.ID, name, ErrMeetingNotFound)
}

// addHost provisions the user's principal and grants it host rights on the
// conference.
func (c *Controller) addHost(ctx context.Context, client *connect.Client, conf *models.Conference, user *models.User) (*connect.Principal, error) {
	dir := connect.NewDirectory(client, c.settings().UseSISIDs, c.logger)
	principal, err := dir.FindOrCreate(ctx, user)
	if err != nil {
		return nil, err
	}

	key, err := c.findConferenceKey(ctx, client, conf)
	if err != nil {
		return nil, err
	}
	client.PermissionsUpdate(ctx, key, principal.ID, "host")
	return principal, nil
}

// meetingName builds the remote display name for a conference.
func (c *Controller) meetingName(conf *models.Conference) string {
	return fmt.Sprintf("%s: %s [%d]", conf.CourseLabel(), conf.Title, conf.ID)
}

// meetingURL is the browser-facing address of the meeting.
func (c *Controller) meetingURL(conf *models.Conference) string {
	return strings.TrimRight(c.settings().Domain, "/") + "/" + c.meetingURLSuffix(conf)
}

// meetingURLSuffix resolves the remote URL suffix for a conference. The
// persisted meeting_url_id always wins; the legacy format is a read-only
// fallback for meetings created before the globally-unique scheme and is
// never written back.
func (c *Controller) meetingURLSuffix(conf *models.Conference) string {
	if v := conf.Setting(models.SettingMeetingURLID); v != "" {
		return v
	}
	return "canvas-meeting-" + strconv.FormatInt(conf.ID, 10)
}

// newMeetingURLID generates a globally-unique URL suffix. The local id
// alone is not unique across federated deployments sharing one tenant.
func (c *Controller) newMeetingURLID(conf *models.Conference) string {
	return fmt.Sprintf("canvas-mtg-%d-%d-%d", conf.RootAccountGlobalID, conf.ID, conf.CreatedAt.Unix())
}

// archiveDurationMinutes reads an archive duration in whole minutes, using
// the duration attribute when parseable and the begin/end dates otherwise.
func archiveDurationMinutes(a *connect.MeetingArchive) int {
	if d, ok := parseClockDuration(a.Duration()); ok {
		return int(d.Minutes())
	}
	begin := parseConnectTime(a.DateBegin())
	end := parseConnectTime(a.DateEnd())
	if !begin.IsZero() && !end.IsZero() && end.After(begin) {
		return int(end.Sub(begin).Minutes())
	}
	return 0
}

// parseClockDuration parses the Connect "HH:MM:SS[.mmm]" duration format.
func parseClockDuration(s string) (time.Duration, bool) {
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		s = s[:dot]
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, true
}

var connectTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000-07:00",
}

// parseConnectTime parses a Connect date attribute, zero on failure.
func parseConnectTime(s string) time.Time {
	for _, layout := range connectTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
