package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	intconfig "habittracker/internal/config"
	"habittracker/internal/hateoas"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "router-secret"

var (
	testNow     = time.Date(2026, 5, 1, 7, 30, 0, 0, time.UTC)
	habitCols   = []string{"id", "user_id", "name", "description", "type", "frequency_type", "frequency_times_per_period", "target_value", "target_unit", "status", "is_archived", "end_date", "milestone_target", "milestone_current", "created_at_utc", "updated_at_utc", "last_completed_at_utc"}
	tagCols     = []string{"id", "user_id", "name", "description", "created_at_utc", "updated_at_utc"}
	testEnvBase = intconfig.Env{JWTSecret: testSecret, DefaultPageSize: 10, MaxPageSize: 100, EncryptionKey: "router-key"}
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	return newTestServerEnv(t, testEnvBase)
}

func newTestServerEnv(t *testing.T, env intconfig.Env) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	deps, err := NewDeps(conn, env)
	require.NoError(t, err)
	deps.Now = func() time.Time { return testNow }
	deps.NewID = func(prefix string) string { return prefix + "_new" }

	r, err := NewRouter(env, deps, zap.NewNop())
	require.NoError(t, err)
	return r, mock
}

func token(t *testing.T, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u_1",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func do(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token(t, "member"))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func addHabit(rows *sqlmock.Rows, id, name string) *sqlmock.Rows {
	return rows.AddRow(id, "u_1", name, nil, "measurable", "daily", 1, 30, "pages", "ongoing", false, nil, nil, nil, testNow, nil, nil)
}

func linksByRel(t *testing.T, raw any) map[string]map[string]any {
	t.Helper()
	list, ok := raw.([]any)
	require.True(t, ok, "links must be a list")
	out := map[string]map[string]any{}
	for _, l := range list {
		m := l.(map[string]any)
		out[m["rel"].(string)] = m
	}
	return out
}

var hateoasAccept = map[string]string{"Accept": hateoas.HateoasJSON}

func TestListHabitsSortShapePage(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM habits WHERE user_id = \?`).WithArgs("u_1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`FROM habits WHERE user_id = \? ORDER BY name ASC, created_at_utc DESC, id ASC LIMIT \? OFFSET \?`).
		WithArgs("u_1", 5, 5).
		WillReturnRows(addHabit(addHabit(sqlmock.NewRows(habitCols), "h_6", "Stretch"), "h_7", "Walk"))

	w := do(t, srv, http.MethodGet, "/api/habits?sort=name,-createdAtUtc&fields=id,name&page=2&pageSize=5", "", hateoasAccept)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, hateoas.HateoasJSON, w.Header().Get("Content-Type"))
	assert.NoError(t, mock.ExpectationsWereMet())

	body := decode(t, w)
	assert.EqualValues(t, 2, body["page"])
	assert.EqualValues(t, 5, body["pageSize"])
	assert.EqualValues(t, 7, body["totalCount"])
	assert.EqualValues(t, 2, body["totalPages"])
	assert.Equal(t, true, body["hasPreviousPage"])
	assert.Equal(t, false, body["hasNextPage"])

	items := body["items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Len(t, first, 3)
	assert.Equal(t, "h_6", first["id"])
	assert.Equal(t, "Stretch", first["name"])
	itemLinks := linksByRel(t, first["links"])
	assert.Equal(t, "http://example.com/api/habits/h_6?fields=id%2Cname", itemLinks["self"]["href"])
	assert.Equal(t, "PATCH", itemLinks["partial-update"]["method"])
	assert.Equal(t, "http://example.com/api/habits/h_6/tags", itemLinks["upsert-tags"]["href"])

	links := linksByRel(t, body["links"])
	assert.Len(t, links, 3)
	assert.Equal(t, "http://example.com/api/habits?fields=id%2Cname&page=2&pageSize=5&sort=name%2C-createdAtUtc", links["self"]["href"])
	assert.Equal(t, "http://example.com/api/habits?fields=id%2Cname&page=1&pageSize=5&sort=name%2C-createdAtUtc", links["previous-page"]["href"])
	assert.Equal(t, "http://example.com/api/habits", links["create"]["href"])
	assert.Equal(t, "POST", links["create"]["method"])
	assert.NotContains(t, links, "next-page")
}

func TestListHabitsWithoutHypermedia(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`FROM habits WHERE user_id = \? ORDER BY created_at_utc ASC, id ASC LIMIT`).
		WithArgs("u_1", 10, 0).
		WillReturnRows(addHabit(sqlmock.NewRows(habitCols), "h_1", "Read"))

	w := do(t, srv, http.MethodGet, "/api/habits", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	body := decode(t, w)
	assert.NotContains(t, body, "links")
	item := body["items"].([]any)[0].(map[string]any)
	assert.NotContains(t, item, "links")
	assert.Equal(t, "pages", item["target"].(map[string]any)["unit"])
}

func TestListHabitsRejectsBadQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		msg   string
	}{
		{name: "unknown sort field", query: "sort=name,bogus", msg: "The provided sort parameter is not valid: 'name,bogus'"},
		{name: "unknown shape field", query: "fields=id,secret", msg: "The provided data shaping fields are not valid: 'id,secret'"},
		{name: "bad type filter", query: "type=sometimes"},
		{name: "non numeric page", query: "page=two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, mock := newTestServer(t)
			w := do(t, srv, http.MethodGet, "/api/habits?"+tt.query, "", nil)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			if tt.msg != "" {
				assert.Equal(t, tt.msg, decode(t, w)["error"])
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHabitsRequireToken(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/habits", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetHabitShapedWithTags(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.ExpectQuery(`FROM habits WHERE id = \? AND user_id = \?`).WithArgs("h_1", "u_1").
		WillReturnRows(addHabit(sqlmock.NewRows(habitCols), "h_1", "Read"))
	mock.ExpectQuery(`JOIN habit_tags`).WithArgs("h_1").
		WillReturnRows(sqlmock.NewRows(tagCols).AddRow("t_1", "u_1", "health", nil, testNow, nil))

	w := do(t, srv, http.MethodGet, "/api/habits/h_1?fields=id,tags", "", hateoasAccept)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, strings.HasPrefix(w.Body.String(), `{"id":"h_1","tags":["health"],"links":[`), w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetHabitNotFound(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.ExpectQuery(`FROM habits WHERE id = \?`).WillReturnRows(sqlmock.NewRows(habitCols))

	w := do(t, srv, http.MethodGet, "/api/habits/h_x", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, decode(t, w)["request_id"])
}

func TestCreateHabit(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.ExpectExec("INSERT INTO habits").WillReturnResult(sqlmock.NewResult(1, 1))

	body := `{"name":"Read","type":"measurable","frequency":{"type":"daily","timesPerPeriod":1},"target":{"value":30,"unit":"pages"}}`
	w := do(t, srv, http.MethodPost, "/api/habits", body, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "http://example.com/api/habits/h_new", w.Header().Get("Location"))

	out := decode(t, w)
	assert.Equal(t, "h_new", out["id"])
	assert.Equal(t, "ongoing", out["status"])
	assert.Len(t, linksByRel(t, out["links"]), 5)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateHabitValidation(t *testing.T) {
	srv, mock := newTestServer(t)

	body := `{"name":"Read","type":"binary","frequency":{"type":"daily","timesPerPeriod":1},"target":{"value":1,"unit":"pages"}}`
	w := do(t, srv, http.MethodPost, "/api/habits", body, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	details := decode(t, w)["details"].(map[string]any)
	assert.Contains(t, details, "target.unit")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatchHabit(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.ExpectQuery(`FROM habits WHERE id = \?`).WithArgs("h_1", "u_1").
		WillReturnRows(addHabit(sqlmock.NewRows(habitCols), "h_1", "Read"))
	mock.ExpectQuery(`JOIN habit_tags`).WillReturnRows(sqlmock.NewRows(tagCols))
	mock.ExpectExec("UPDATE habits SET").WillReturnResult(sqlmock.NewResult(0, 1))

	w := do(t, srv, http.MethodPatch, "/api/habits/h_1", `[{"op":"replace","path":"/name","value":"Read more"}]`,
		map[string]string{"Content-Type": "application/json-patch+json"})
	assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatchHabitRejectsInvalidResult(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "merge patch body", body: `{"name":"Read more"}`},
		{name: "name too short", body: `[{"op":"replace","path":"/name","value":"R"}]`},
		{name: "unknown path", body: `[{"op":"replace","path":"/owner","value":"u_2"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, mock := newTestServer(t)
			mock.ExpectQuery(`FROM habits WHERE id = \?`).WithArgs("h_1", "u_1").
				WillReturnRows(addHabit(sqlmock.NewRows(habitCols), "h_1", "Read"))
			mock.ExpectQuery(`JOIN habit_tags`).WillReturnRows(sqlmock.NewRows(tagCols))

			w := do(t, srv, http.MethodPatch, "/api/habits/h_1", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPatchHabitEmptyBody(t *testing.T) {
	srv, mock := newTestServer(t)
	w := do(t, srv, http.MethodPatch, "/api/habits/h_1", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "empty_body", decode(t, w)["code"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertHabitTags(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.ExpectQuery(`FROM habits WHERE id = \?`).WithArgs("h_1", "u_1").
		WillReturnRows(addHabit(sqlmock.NewRows(habitCols), "h_1", "Read"))
	mock.ExpectQuery(`JOIN habit_tags`).WillReturnRows(sqlmock.NewRows(tagCols))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tags`).WithArgs("u_1", "t_1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT tag_id FROM habit_tags").WillReturnRows(sqlmock.NewRows([]string{"tag_id"}))
	mock.ExpectExec("INSERT INTO habit_tags").WithArgs("h_1", "t_1", testNow).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := do(t, srv, http.MethodPut, "/api/habits/h_1/tags", `{"tagIds":["t_1"]}`, nil)
	assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteHabit(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.ExpectExec("DELETE FROM habits").WithArgs("h_1", "u_1").WillReturnResult(sqlmock.NewResult(0, 1))

	w := do(t, srv, http.MethodDelete, "/api/habits/h_1", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHabitsXLSX(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`FROM habits WHERE user_id = \? ORDER BY name DESC, id ASC$`).WithArgs("u_1").
		WillReturnRows(addHabit(sqlmock.NewRows(habitCols), "h_1", "Read"))

	w := do(t, srv, http.MethodGet, "/api/habits/export?format=xlsx&sort=name%20desc&fields=id,name", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "habits_20260501_073000.xlsx")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHabitsRejectsUnknownFormat(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, http.MethodGet, "/api/habits/export?format=csv", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTagConflict(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.ExpectExec("INSERT INTO tags").WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	w := do(t, srv, http.MethodPost, "/api/tags", `{"name":"health"}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode(t, w)["error"], "The tag 'health' already exists")
}

func TestListTags(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tags`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`FROM tags WHERE user_id = \? ORDER BY created_at_utc DESC, id ASC LIMIT`).WithArgs("u_1", 10, 0).
		WillReturnRows(sqlmock.NewRows(tagCols).AddRow("t_1", "u_1", "health", nil, testNow, nil))

	w := do(t, srv, http.MethodGet, "/api/tags?sort=-createdAtUtc&fields=name", "", hateoasAccept)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	links := linksByRel(t, body["links"])
	assert.Contains(t, links, "next-page")
	assert.NotContains(t, links, "previous-page")
	assert.Equal(t, "http://example.com/api/tags?fields=name&page=2&pageSize=10&sort=-createdAtUtc", links["next-page"]["href"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTagsRejectsHabitOnlySort(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, http.MethodGet, "/api/tags?sort=target.unit", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoutesRequiresAdmin(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, http.MethodGet, "/api/routes", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, srv, http.MethodGet, "/api/routes", "", map[string]string{"Authorization": "Bearer " + token(t, "admin")})
	require.Equal(t, http.StatusOK, w.Code)
	routes := decode(t, w)["routes"].([]any)
	assert.Len(t, routes, 18)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
