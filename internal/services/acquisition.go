package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/magnetarr/magnetarr/internal/constants"
	"github.com/magnetarr/magnetarr/internal/database"
	"github.com/magnetarr/magnetarr/internal/errors"
	"github.com/magnetarr/magnetarr/internal/models"
	"github.com/magnetarr/magnetarr/pkg/debrid"
	"github.com/magnetarr/magnetarr/pkg/infohash"
	"github.com/magnetarr/magnetarr/pkg/logger"
)

// acquisitionClient is the slice of the debrid client the controller needs.
type acquisitionClient interface {
	UploadMagnet(ctx context.Context, apiKey, magnetURI string) (*debrid.Magnet, error)
	GetStatus(ctx context.Context, apiKey, remoteID string) (*debrid.MagnetStatus, error)
}

// session is one acquisition attempt. All fields are guarded by mu on the
// owning controller.
type session struct {
	hash     string
	title    string
	remoteID string
	state    models.SessionState
	attempt  int
	progress float64
	speed    int64
	eta      int64
	files    []models.FileEntry
	errKind  string
	errMsg   string

	cancel context.CancelFunc
}

// AcquisitionController drives magnets through the acquisition service.
// Only one session runs at a time; starting a new acquisition supersedes
// the current one. Polling continues in the background after the initiating
// request returns.
type AcquisitionController struct {
	client acquisitionClient
	db     database.Database
	apiKey string
	logger logger.Logger

	pollInterval time.Duration

	mu      sync.Mutex
	current *session
}

func NewAcquisitionController(client acquisitionClient, db database.Database, apiKey string, log logger.Logger) *AcquisitionController {
	return &AcquisitionController{
		client:       client,
		db:           db,
		apiKey:       apiKey,
		logger:       log,
		pollInterval: constants.PollInterval,
	}
}

// SetPollInterval overrides the delay between status polls. Used by tests.
func (c *AcquisitionController) SetPollInterval(interval time.Duration) {
	c.pollInterval = interval
}

// Start begins acquiring the torrent identified by hashCandidate. Any
// session already in flight is cancelled and replaced. The returned snapshot
// reflects the session immediately after creation.
func (c *AcquisitionController) Start(hashCandidate, title, magnetURI string) (models.SessionSnapshot, error) {
	if c.apiKey == "" {
		return models.SessionSnapshot{}, errors.NewValidation("debrid API key not configured", nil)
	}

	hash, ok := infohash.FromCandidates(hashCandidate, magnetURI)
	if !ok {
		return models.SessionSnapshot{}, errors.NewValidation(fmt.Sprintf("invalid info hash %q", hashCandidate), nil)
	}
	if magnetURI == "" {
		magnetURI = fmt.Sprintf("magnet:?xt=urn:btih:%s&dn=%s", hash, title)
	}

	c.mu.Lock()
	if c.current != nil && !c.current.state.Terminal() {
		c.current.cancel()
		c.current.state = models.StateCancelled
		c.logger.Infof("[AcquisitionController] superseding session for %s", c.current.hash)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		hash:   hash,
		title:  title,
		state:  models.StateAdding,
		cancel: cancel,
	}
	c.current = sess
	snapshot := c.snapshotLocked(sess)
	c.mu.Unlock()

	go c.run(ctx, sess, magnetURI)

	return snapshot, nil
}

// Status returns a snapshot of the current session. The boolean is false
// when no acquisition has been started.
func (c *AcquisitionController) Status() (models.SessionSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return models.SessionSnapshot{}, false
	}
	return c.snapshotLocked(c.current), true
}

// Cancel stops the current session. Cancelling a finished session is a
// no-op, so repeated cancellations are safe. The boolean is false when no
// acquisition has ever been started.
func (c *AcquisitionController) Cancel() (models.SessionSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return models.SessionSnapshot{}, false
	}
	if !c.current.state.Terminal() {
		c.current.cancel()
		c.current.state = models.StateCancelled
		c.logger.Infof("[AcquisitionController] cancelled session for %s", c.current.hash)
	}
	return c.snapshotLocked(c.current), true
}

// Files returns the resolved file list of a ready session.
func (c *AcquisitionController) Files() ([]models.FileEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil, errors.NewValidation("no acquisition in progress", nil)
	}
	if c.current.state != models.StateReady {
		return nil, errors.NewValidation(fmt.Sprintf("acquisition is %s, not ready", c.current.state), nil)
	}
	files := make([]models.FileEntry, len(c.current.files))
	copy(files, c.current.files)
	return files, nil
}

// run is the session lifecycle goroutine.
func (c *AcquisitionController) run(ctx context.Context, sess *session, magnetURI string) {
	remembered, err := c.db.GetRemoteID(sess.hash)
	if err != nil {
		c.logger.Warnf("[AcquisitionController] remote ID lookup failed for %s: %v", sess.hash, err)
	}

	resumed := false
	maxAttempts := constants.MaxPollAttempts
	if remembered != nil {
		// A remembered identifier means the magnet was added before; poll it
		// directly with a short budget instead of uploading again.
		resumed = true
		maxAttempts = constants.MaxResumePollAttempts
		c.setRemoteID(sess, remembered.RemoteID, models.StatePolling)
		c.logger.Infof("[AcquisitionController] resuming %s with remote ID %s", sess.hash, remembered.RemoteID)
	} else {
		if !c.upload(ctx, sess, magnetURI) {
			return
		}
	}

	recovered := false
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if !c.sleep(ctx) {
			return
		}

		c.setAttempt(sess, attempt)

		status, err := c.client.GetStatus(ctx, c.apiKey, c.remoteID(sess))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if debrid.IsUnknownMagnet(err) {
				if resumed && !recovered {
					// The remembered identifier went stale. Forget it,
					// upload fresh and start over with a full budget.
					// This recovery happens at most once per session.
					recovered = true
					resumed = false
					c.logger.Infof("[AcquisitionController] stale remote ID for %s, re-adding magnet", sess.hash)
					if err := c.db.DeleteRemoteID(sess.hash); err != nil {
						c.logger.Warnf("[AcquisitionController] failed to forget stale remote ID: %v", err)
					}
					if !c.upload(ctx, sess, magnetURI) {
						return
					}
					maxAttempts = constants.MaxPollAttempts
					attempt = 0
					continue
				}
				if !resumed && !recovered {
					// A freshly assigned identifier the service does not
					// know yet simply has not been indexed; wait without
					// consuming the attempt.
					attempt--
					continue
				}
				c.fail(sess, errors.NewAPI("magnet no longer exists on the acquisition service", err))
				return
			}
			if debrid.IsAuthError(err) {
				c.fail(sess, errors.NewAuth("acquisition service rejected the API key", err))
				return
			}
			c.logger.Warnf("[AcquisitionController] poll %d for %s failed: %v", attempt, sess.hash, err)
			continue
		}

		if status.StatusCode > debrid.StatusReady {
			c.fail(sess, errors.NewAPI(fmt.Sprintf("acquisition failed: %s", status.StatusText), nil))
			return
		}

		if status.StatusCode == debrid.StatusReady {
			c.finish(sess, status)
			return
		}

		c.updateProgress(sess, status)
	}

	c.fail(sess, errors.NewTimeout("acquisition polling budget"))
}

// upload submits the magnet and records the assigned remote ID.
func (c *AcquisitionController) upload(ctx context.Context, sess *session, magnetURI string) bool {
	c.setState(sess, models.StateAdding)

	magnet, err := c.client.UploadMagnet(ctx, c.apiKey, magnetURI)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		if debrid.IsAuthError(err) {
			c.fail(sess, errors.NewAuth("acquisition service rejected the API key", err))
		} else {
			c.fail(sess, errors.NewAPI("failed to add magnet", err))
		}
		return false
	}

	if err := c.db.SetRemoteID(sess.hash, magnet.ID); err != nil {
		c.logger.Warnf("[AcquisitionController] failed to remember remote ID for %s: %v", sess.hash, err)
	}
	if err := c.db.StoreMagnet(&database.MagnetRecord{
		RemoteID: magnet.ID,
		Hash:     sess.hash,
		Title:    sess.title,
	}); err != nil {
		c.logger.Warnf("[AcquisitionController] failed to store magnet record: %v", err)
	}

	c.setRemoteID(sess, magnet.ID, models.StatePolling)
	c.logger.Infof("[AcquisitionController] added %s as remote ID %s", sess.hash, magnet.ID)
	return true
}

// sleep waits one poll interval, returning false when the session was
// cancelled meanwhile.
func (c *AcquisitionController) sleep(ctx context.Context) bool {
	timer := time.NewTimer(c.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (c *AcquisitionController) finish(sess *session, status *debrid.MagnetStatus) {
	files := make([]models.FileEntry, 0, len(status.Links))
	for _, link := range status.Links {
		if !isVideoFile(link.Filename) {
			continue
		}
		files = append(files, models.FileEntry{
			ID:   link.Link,
			Name: link.Filename,
			Size: link.Size,
			Link: link.Link,
		})
	}
	sortFilesNaturally(files)

	c.mu.Lock()
	defer c.mu.Unlock()
	if sess.state.Terminal() {
		return
	}
	sess.state = models.StateReady
	sess.progress = 100
	sess.speed = 0
	sess.eta = 0
	sess.files = files
	c.logger.Infof("[AcquisitionController] %s is ready with %d files (%.2f GB)",
		sess.hash, len(files), float64(status.Size)/constants.BytesToGB)
}

func (c *AcquisitionController) updateProgress(sess *session, status *debrid.MagnetStatus) {
	progress := normalizeProgress(status.Progress)

	c.mu.Lock()
	defer c.mu.Unlock()
	if sess.state.Terminal() {
		return
	}
	sess.state = models.StatePolling
	sess.progress = progress
	sess.speed = status.Speed
	sess.eta = estimateETA(status.Size, progress, status.Speed)
}

func (c *AcquisitionController) fail(sess *session, failure *errors.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sess.state.Terminal() {
		return
	}
	sess.state = models.StateFailed
	sess.errKind = string(failure.Kind)
	sess.errMsg = failure.Message
	c.logger.Errorf("[AcquisitionController] %s failed: %v", sess.hash, failure)
}

func (c *AcquisitionController) setState(sess *session, state models.SessionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !sess.state.Terminal() {
		sess.state = state
	}
}

func (c *AcquisitionController) setRemoteID(sess *session, remoteID string, state models.SessionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess.remoteID = remoteID
	if !sess.state.Terminal() {
		sess.state = state
	}
}

func (c *AcquisitionController) setAttempt(sess *session, attempt int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess.attempt = attempt
}

func (c *AcquisitionController) remoteID(sess *session) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return sess.remoteID
}

func (c *AcquisitionController) snapshotLocked(sess *session) models.SessionSnapshot {
	snapshot := models.SessionSnapshot{
		Hash:         sess.hash,
		Title:        sess.title,
		RemoteID:     sess.remoteID,
		State:        sess.state,
		Attempt:      sess.attempt,
		Progress:     sess.progress,
		Speed:        sess.speed,
		ETA:          sess.eta,
		ErrorKind:    sess.errKind,
		ErrorMessage: sess.errMsg,
	}
	if len(sess.files) > 0 {
		snapshot.Files = make([]models.FileEntry, len(sess.files))
		copy(snapshot.Files, sess.files)
	}
	return snapshot
}

// normalizeProgress maps the remote's progress report onto [0,100]. Values
// at or below 1 are fractions, anything above is already a percentage.
func normalizeProgress(value float64) float64 {
	if value <= 1 {
		value *= 100
	}
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

// estimateETA derives remaining seconds from size, progress and speed.
func estimateETA(size int64, progress float64, speed int64) int64 {
	if size <= 0 || speed <= 0 || progress >= 100 {
		return 0
	}
	remaining := float64(size) * (1 - progress/100)
	return int64(remaining / float64(speed))
}

// isVideoFile reports whether name carries a playable video extension.
func isVideoFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, videoExt := range constants.VideoExtensions {
		if ext == videoExt {
			return true
		}
	}
	return false
}

// sortFilesNaturally orders files so that numbered episodes line up the way
// a human expects: "Episode 2" before "Episode 10".
func sortFilesNaturally(files []models.FileEntry) {
	sort.SliceStable(files, func(i, j int) bool {
		return naturalLess(files[i].Name, files[j].Name)
	})
}

func naturalLess(a, b string) bool {
	ai, bi := 0, 0
	for ai < len(a) && bi < len(b) {
		ac, bc := a[ai], b[bi]
		if isDigit(ac) && isDigit(bc) {
			an, aEnd := readNumber(a, ai)
			bn, bEnd := readNumber(b, bi)
			if an != bn {
				return an < bn
			}
			ai, bi = aEnd, bEnd
			continue
		}
		al, bl := lowerByte(ac), lowerByte(bc)
		if al != bl {
			return al < bl
		}
		ai++
		bi++
	}
	return len(a)-ai < len(b)-bi
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func lowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func readNumber(s string, start int) (value int64, end int) {
	end = start
	for end < len(s) && isDigit(s[end]) {
		value = value*10 + int64(s[end]-'0')
		end++
	}
	return value, end
}
