package batches

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"twin-sync/core/batch"
	"twin-sync/core/failurelog"
	"twin-sync/core/input"
	"twin-sync/core/kind"
	"twin-sync/core/kind/kindtest"
	"twin-sync/core/report"
	"twin-sync/core/storage"
	"twin-sync/core/storage/mocks"
	"twin-sync/feature/partasplanned"
)

type testApp struct {
	app     *fiber.App
	orch    *batch.Orchestrator
	storage *mocks.Client
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	env := kindtest.New(t)
	kinds := kind.NewRegistry()
	require.NoError(t, kinds.Register(partasplanned.New(env.Deps)))

	client := new(mocks.Client)
	cfg := storage.Config{Bucket: "batches", UploadPrefix: "uploads"}
	orch := batch.New(batch.Config{Workers: 2}, kinds,
		report.NewAggregator(report.NewGormStore(env.DB), nil),
		failurelog.NewGormSink(env.DB),
		input.NewParser(client, cfg.Bucket), nil)

	app := fiber.New()
	f := NewFeature(orch, client, cfg, nil)
	require.True(t, f.IsEnabled())
	require.NoError(t, f.Load(app))
	return &testApp{app: app, orch: orch, storage: client}
}

func (a *testApp) do(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := a.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &body)
	return resp.StatusCode, body
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

const twoParts = `{"batch_id":"b1","rows":[
	{"manufacturer_part_id":"MPI-1","name_at_manufacturer":"Hub"},
	{"manufacturer_part_id":"MPI-2","name_at_manufacturer":"Rim","valid_from":"2024-05-01T00:00:00"}
]}`

func TestHandleSubmit(t *testing.T) {
	a := setupTestApp(t)

	status, body := a.do(t, jsonRequest("POST", "/batches/"+partasplanned.Name, twoParts))
	require.Equal(t, fiber.StatusAccepted, status, body)
	assert.Equal(t, "b1", body["batch_id"])
	a.orch.Wait()

	status, body = a.do(t, httptest.NewRequest("GET", "/batches/b1", nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "FINISHED", body["status"])
	assert.EqualValues(t, 2, body["success"])
	assert.EqualValues(t, 0, body["failure"])

	status, body = a.do(t, httptest.NewRequest("GET", "/kinds/"+partasplanned.Name+"/records/MPI-2", nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "b1", body["batch_id"])
	fields := body["fields"].(map[string]any)
	assert.Equal(t, "2024-05-01T00:00:00Z", fields["valid_from"])

	status, body = a.do(t, httptest.NewRequest("GET", "/kinds/"+partasplanned.Name+"/records/MPI-2?compact=true", nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.NotContains(t, body, "shell_id")
	assert.Contains(t, body, "fields")
}

func TestHandleSubmit_BadRequests(t *testing.T) {
	a := setupTestApp(t)

	status, body := a.do(t, jsonRequest("POST", "/batches/unknown", twoParts))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["error"], "unknown data kind")

	status, body = a.do(t, jsonRequest("POST", "/batches/"+partasplanned.Name, `{"rows":[]}`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"Rows": "min"}, body["fields"])

	status, _ = a.do(t, jsonRequest("POST", "/batches/"+partasplanned.Name, `{"rows":`))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = a.do(t, jsonRequest("POST", "/batches/"+partasplanned.Name,
		`{"metadata":{"type_of_access":"restricted"},"rows":[{"manufacturer_part_id":"X","name_at_manufacturer":"Y"}]}`))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHandleSubmitColumns(t *testing.T) {
	a := setupTestApp(t)
	columns, _ := json.Marshal(partasplanned.Schema.Columns())

	body := `{"columns":` + string(columns) + `,"rows":[{"manufacturer_part_id":"MPI-9","name_at_manufacturer":"Nut"}]}`
	status, resp := a.do(t, jsonRequest("POST", "/batches", body))
	require.Equal(t, fiber.StatusAccepted, status, resp)
	a.orch.Wait()

	r, err := a.orch.Report(t.Context(), resp["batch_id"].(string))
	require.NoError(t, err)
	assert.Equal(t, partasplanned.Name, r.Kind)

	status, resp = a.do(t, jsonRequest("POST", "/batches", `{"columns":["a","b"],"rows":[{"a":"1"}]}`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, resp["error"], "no data kind")
}

func multipartUpload(t *testing.T, fileName, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/batches/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHandleUpload(t *testing.T) {
	a := setupTestApp(t)
	csv := "manufacturer_part_id,name_at_manufacturer,uuid,classification,valid_from,valid_to\nMPI-5,Axle,,,,\n"

	a.storage.On("PutObject", mock.Anything, "batches", "uploads/up1.csv", mock.Anything, int64(len(csv)), mock.Anything).
		Return(minio.UploadInfo{}, nil)
	a.storage.On("GetObject", mock.Anything, "batches", "uploads/up1.csv", mock.Anything).
		Return(io.NopCloser(strings.NewReader(csv)), nil)

	status, body := a.do(t, multipartUpload(t, "parts.csv", csv, map[string]string{
		"batch_id": "up1",
		"metadata": `{"type_of_access":"unrestricted"}`,
	}))
	require.Equal(t, fiber.StatusAccepted, status, body)
	assert.Equal(t, "up1", body["batch_id"])
	a.orch.Wait()

	r, err := a.orch.Report(t.Context(), "up1")
	require.NoError(t, err)
	assert.Equal(t, partasplanned.Name, r.Kind)
	assert.Equal(t, 1, r.Success)
	a.storage.AssertExpectations(t)
}

func TestHandleUpload_BadRequests(t *testing.T) {
	a := setupTestApp(t)

	status, _ := a.do(t, multipartUpload(t, "parts.txt", "a,b\n1,2\n", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := a.do(t, multipartUpload(t, "parts.csv", "a\n1\n", map[string]string{"metadata": "{"}))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["error"], "invalid metadata")

	req := httptest.NewRequest("POST", "/batches/upload", strings.NewReader(""))
	status, _ = a.do(t, req)
	assert.Equal(t, fiber.StatusBadRequest, status)

	a.storage.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleDelete(t *testing.T) {
	a := setupTestApp(t)

	status, _ := a.do(t, jsonRequest("POST", "/batches/"+partasplanned.Name, twoParts))
	require.Equal(t, fiber.StatusAccepted, status)
	a.orch.Wait()

	status, body := a.do(t, httptest.NewRequest("DELETE", "/batches/b1", nil))
	require.Equal(t, fiber.StatusAccepted, status, body)
	deleteID := body["batch_id"].(string)
	a.orch.Wait()

	status, body = a.do(t, httptest.NewRequest("GET", "/batches/"+deleteID, nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 2, body["deleted"])
	assert.Equal(t, "b1", body["reference_batch_id"])

	resp, err := a.app.Test(httptest.NewRequest("GET", "/batches/"+deleteID+"/failures", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var failures []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&failures))
	assert.Empty(t, failures)

	status, _ = a.do(t, httptest.NewRequest("DELETE", "/batches/"+deleteID, nil))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHandleNotFound(t *testing.T) {
	a := setupTestApp(t)

	for _, path := range []string{
		"/batches/missing",
		"/batches/missing/failures",
		"/kinds/" + partasplanned.Name + "/records/missing",
	} {
		status, _ := a.do(t, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, fiber.StatusNotFound, status, path)
	}

	status, _ := a.do(t, httptest.NewRequest("DELETE", "/batches/missing", nil))
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHandleListKindsAndReports(t *testing.T) {
	a := setupTestApp(t)

	resp, err := a.app.Test(httptest.NewRequest("GET", "/kinds", nil))
	require.NoError(t, err)
	var schemas []kind.Schema
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&schemas))
	require.Len(t, schemas, 1)
	assert.Equal(t, partasplanned.Name, schemas[0].Name)

	status, _ := a.do(t, jsonRequest("POST", "/batches/"+partasplanned.Name, twoParts))
	require.Equal(t, fiber.StatusAccepted, status)
	a.orch.Wait()

	resp, err = a.app.Test(httptest.NewRequest("GET", "/batches?limit=10", nil))
	require.NoError(t, err)
	var reports []report.ProcessReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "b1", reports[0].BatchID)
}
