package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelpos/receiptd/internal/config"
	"github.com/fuelpos/receiptd/internal/printer"
	"github.com/fuelpos/receiptd/internal/render"
)

type fakeDriver struct {
	texts []string
	pins  []int
	err   error
}

func (d *fakeDriver) PrintText(text string) error {
	if d.err != nil {
		return d.err
	}
	d.texts = append(d.texts, text)
	return nil
}

func (d *fakeDriver) KickDrawer(pin int) error {
	if pin != 2 && pin != 5 {
		return errors.New("invalid cash drawer pin")
	}
	d.pins = append(d.pins, pin)
	return nil
}

type fakeQueue struct {
	jobs      []printer.Job
	submitted []image.Image
}

func (q *fakeQueue) Submit(img image.Image, scale int) (printer.Job, error) {
	job := printer.Job{ID: "job-1", Status: printer.StatusQueued}
	q.jobs = append(q.jobs, job)
	q.submitted = append(q.submitted, img)
	return job, nil
}

func (q *fakeQueue) Jobs() []printer.Job { return q.jobs }

func (q *fakeQueue) Job(id string) (printer.Job, bool) {
	for _, job := range q.jobs {
		if job.ID == id {
			return job, true
		}
	}
	return printer.Job{}, false
}

func (q *fakeQueue) ClearCompleted() int {
	kept := q.jobs[:0]
	removed := 0
	for _, job := range q.jobs {
		if job.Status == printer.StatusCompleted || job.Status == printer.StatusFailed {
			removed++
			continue
		}
		kept = append(kept, job)
	}
	q.jobs = kept
	return removed
}

func newTestServer(t *testing.T) (*Server, *fakeDriver, *fakeQueue) {
	t.Helper()

	store, err := config.NewStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	// The builtin face needs no font files on disk.
	cfg := store.Snapshot()
	cfg.Layout.FontPath = ""
	require.NoError(t, store.Replace(cfg))

	driver := &fakeDriver{}
	queue := &fakeQueue{}
	engine := render.NewEngine(render.NewFontCache(), nil)

	return NewServer(store, engine, driver, queue, nil), driver, queue
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

const validPayload = `{
	"items": [
		{"name": "Gasoline 95", "amount": 40.5, "quantity": 30}
	],
	"transaction_info": {"received": 1300}
}`

func TestServer_Health(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestServer_PrintEnqueuesJob(t *testing.T) {
	s, _, queue := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/print", validPayload)
	require.Equal(t, 200, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		JobID   string `json:"job_id"`
		Total   string `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "job-1", resp.JobID)
	assert.Equal(t, "1215.00", resp.Total)

	require.Len(t, queue.submitted, 1)
	assert.Equal(t, 384, queue.submitted[0].Bounds().Dx())
}

func TestServer_PrintRejectsInvalidPayload(t *testing.T) {
	s, _, queue := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/print", `{"items": []}`)
	assert.Equal(t, 400, rec.Code)
	assert.Contains(t, rec.Body.String(), "items")
	assert.Empty(t, queue.submitted)
}

func TestServer_RenderReturnsPNG(t *testing.T) {
	s, _, queue := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/render", validPayload)
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 384, img.Bounds().Dx())

	// Preview does not print.
	assert.Empty(t, queue.submitted)
}

func TestServer_PrintText(t *testing.T) {
	s, driver, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/print-text", `{"text": "<<C>>Hello"}`)
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, []string{"<<C>>Hello"}, driver.texts)

	rec = doRequest(t, s, http.MethodPost, "/print-text", `{}`)
	assert.Equal(t, 400, rec.Code)
}

func TestServer_OpenDrawer(t *testing.T) {
	s, driver, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/open-drawer", "")
	assert.Equal(t, 200, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/open-drawer", `{"pin": 5}`)
	assert.Equal(t, 200, rec.Code)

	assert.Equal(t, []int{2, 5}, driver.pins)

	rec = doRequest(t, s, http.MethodPost, "/open-drawer", `{"pin": 3}`)
	assert.Equal(t, 400, rec.Code)
}

func TestServer_Jobs(t *testing.T) {
	s, _, _ := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/print", validPayload)

	rec := doRequest(t, s, http.MethodGet, "/jobs", "")
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "job-1")

	rec = doRequest(t, s, http.MethodGet, "/job/job-1", "")
	assert.Equal(t, 200, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/job/missing", "")
	assert.Equal(t, 404, rec.Code)
}

func TestServer_PrintSlipUsesTextPath(t *testing.T) {
	s, driver, queue := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/print-slip", validPayload)
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":"1215.00"`)

	// The slip goes through the text path with the configured labels, not
	// the bitmap queue.
	require.Len(t, driver.texts, 1)
	assert.Contains(t, driver.texts[0], "รายการ:")
	assert.Contains(t, driver.texts[0], "ลิตร")
	assert.Contains(t, driver.texts[0], "บาท")
	assert.Empty(t, queue.submitted)

	rec = doRequest(t, s, http.MethodPost, "/print-slip", `{"items": []}`)
	assert.Equal(t, 400, rec.Code)
}

func TestServer_ClearJobs(t *testing.T) {
	s, _, queue := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/print", validPayload)
	queue.jobs[0].Status = printer.StatusCompleted

	rec := doRequest(t, s, http.MethodDelete, "/jobs", "")
	require.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"cleared": 1}`, rec.Body.String())

	rec = doRequest(t, s, http.MethodGet, "/jobs", "")
	assert.NotContains(t, rec.Body.String(), "job-1")
}

func TestServer_ConfigRoundTrip(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/config", "")
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pixel_width":384`)

	body := strings.Replace(rec.Body.String(), `"header_title":"Your Gas Station"`,
		`"header_title":"Shell Ladprao"`, 1)
	rec = doRequest(t, s, http.MethodPut, "/config", body)
	require.Equal(t, 200, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/config", "")
	assert.Contains(t, rec.Body.String(), "Shell Ladprao")
}
