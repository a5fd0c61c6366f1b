package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/lineage/internal/metrics"
	"github.com/mesh-intelligence/lineage/internal/relation"
	"github.com/mesh-intelligence/lineage/internal/session"
	"github.com/mesh-intelligence/lineage/internal/store"
	"github.com/mesh-intelligence/lineage/internal/tree"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// newTestHandler serves a store with union 1 (partners 1 and 2, children 4
// and 5), union 2 (partner 1) and union 3, the parents of person 2. Person
// 5 is adopted; union 1 has a dated marriage in Venezia.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	h, _ := newTestServer(t, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return h
}

// newTestServer is newTestHandler with the server logger and metrics exposed.
func newTestServer(t *testing.T, logger *slog.Logger) (http.Handler, *metrics.Metrics) {
	t.Helper()
	s := store.New()
	put := func(table string, id types.ID, rec types.Record) {
		require.NoError(t, s.Put(table, id, rec))
	}
	for id := types.ID(1); id <= 7; id++ {
		put(types.TablePerson, id, types.Record{})
	}
	for id := types.ID(1); id <= 3; id++ {
		put(types.TableGroup, id, types.Record{})
	}
	for i, j := range [][3]any{
		{1, 1, "partner"}, {1, 2, "partner"}, {1, 4, "child"}, {1, 5, "child"},
		{2, 1, "partner"}, {3, 6, "partner"}, {3, 7, "partner"}, {3, 2, "child"},
	} {
		put(types.TableGroupJunction, types.ID(i+1), types.Record{"group_id": j[0], "reference_id": j[1], "role": j[2]})
	}
	put(types.TableEventType, 1, types.Record{"type": "Marriage", "category": "union"})
	put(types.TableEventType, 2, types.Record{"type": "Adoption", "category": "adoption"})
	put(types.TableEventType, 3, types.Record{"type": "Birth", "category": "birth"})
	put(types.TableCalendar, 1, types.Record{"type": "gregorian"})
	put(types.TableHistoricDate, 1, types.Record{"date": "ABT 1950", "calendar_id": 1})
	put(types.TableHistoricDate, 2, types.Record{"date": "3 MAR 1921", "calendar_id": 1})
	put(types.TablePlace, 1, types.Record{"name": "Venezia"})
	put(types.TableEvent, 1, types.Record{"type_id": 1, "reference_table": "group", "reference_id": 1, "date_id": 1, "place_id": 1})
	put(types.TableEvent, 2, types.Record{"type_id": 2, "reference_table": "person", "reference_id": 5})
	put(types.TableEvent, 3, types.Record{"type_id": 3, "reference_table": "person", "reference_id": 1, "date_id": 2})

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	rel := relation.New(s, relation.WithObserver(func(i relation.Inconsistency) { m.IncrementInconsistency(string(i.Kind)) }))
	b, err := tree.NewBuilder(rel, types.DepthParents, tree.WithBuildHook(m.TreeBuilt))
	require.NoError(t, err)
	reg2 := session.NewRegistry(rel, b, session.WithMetrics(m), session.WithLogger(logger))
	return New(rel, b, reg2, WithGatherer(reg), WithLogger(logger)).Handler(), m
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestHandler(t), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestUnionQueries(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/unions/1/partners", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	partners := decode[struct {
		Partners []types.ID `json:"partners"`
	}](t, rec)
	assert.Equal(t, []types.ID{1, 2}, partners.Partners)

	rec = do(t, h, http.MethodGet, "/unions/1/children", nil)
	children := decode[struct {
		Children []ChildView `json:"children"`
	}](t, rec)
	assert.Equal(t, []ChildView{{ID: 4}, {ID: 5, Adopted: true}}, children.Children)

	rec = do(t, h, http.MethodGet, "/unions/99/partners", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"union_id": 99, "partners": []}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/unions/1/date", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	date := decode[DateView](t, rec)
	assert.Equal(t, 1950, date.Year)
	assert.True(t, date.Approximate)
	assert.Equal(t, "Venezia", date.Place)

	rec = do(t, h, http.MethodGet, "/unions/2/date", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPersonQueries(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/persons/2/parents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"person_id": 2, "union_id": 3, "partners": [6, 7]}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/persons/1/parents", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/persons/1/unions", nil)
	assert.JSONEq(t, `{"person_id": 1, "unions": [1, 2]}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/persons/5/adopted", nil)
	assert.JSONEq(t, `{"person_id": 5, "adopted": true}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/persons/1/dates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dates := decode[map[string]*DateView](t, rec)
	require.NotNil(t, dates["birth"])
	assert.Equal(t, 1921, dates["birth"].Year)
	assert.Nil(t, dates["death"])
}

func TestBadIDs(t *testing.T) {
	h := newTestHandler(t)
	for _, path := range []string{"/unions/abc/partners", "/unions/0/children", "/persons/-3/parents", "/tree?union=x"} {
		rec := do(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestTree(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/tree?union=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tr := decode[tree.Tree](t, rec)
	assert.Equal(t, 3, tr.Depth)
	require.Len(t, tr.Generations, 2)
	assert.Equal(t, types.ID(3), tr.Generations[1][1].UnionID)

	rec = do(t, h, http.MethodGet, "/tree?union=1&depth=4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tr = decode[tree.Tree](t, rec)
	assert.Len(t, tr.Generations, 3)

	rec = do(t, h, http.MethodGet, "/tree?union=1&depth=5", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/tree?person=4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tr = decode[tree.Tree](t, rec)
	assert.Equal(t, types.ID(4), tr.Generations[0][0].Partner1.ID)
}

func TestTreeDepthOverrideKeepsLoggerAndHook(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h, m := newTestServer(t, logger)

	rec := do(t, h, http.MethodGet, "/tree?union=1&depth=4", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, logs.String(), `msg="tree built"`)
	assert.Contains(t, logs.String(), "depth=4")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TreesBuilt.WithLabelValues("4")))
}

func TestSessionFlow(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/sessions", map[string]any{"person_id": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	view := decode[session.View](t, rec)
	require.NotEmpty(t, view.SessionID)
	assert.Equal(t, types.ID(1), view.Focal.UnionID)
	base := "/sessions/" + view.SessionID

	rec = do(t, h, http.MethodPost, base+"/unions/next", map[string]any{"partner_id": 1})
	step := decode[StepResponse](t, rec)
	assert.True(t, step.Moved)
	assert.Equal(t, types.ID(2), step.View.Focal.UnionID)
	assert.True(t, step.View.CanGoBack)

	rec = do(t, h, http.MethodPost, base+"/back", nil)
	step = decode[StepResponse](t, rec)
	assert.True(t, step.Moved)
	assert.Equal(t, types.ID(1), step.View.Focal.UnionID)

	rec = do(t, h, http.MethodPost, base+"/parents", map[string]any{"side": 2})
	step = decode[StepResponse](t, rec)
	assert.True(t, step.Moved)
	assert.Equal(t, types.ID(3), step.View.Focal.UnionID)
	assert.False(t, step.View.CanGoForward, "navigating after back drops forward entries")

	rec = do(t, h, http.MethodPost, base+"/child", map[string]any{"child_id": 2})
	step = decode[StepResponse](t, rec)
	assert.True(t, step.Moved)
	assert.Equal(t, types.ID(2), step.View.Focal.PersonID)

	rec = do(t, h, http.MethodPut, base+"/children-offset", map[string]any{"offset": 1})
	assert.Equal(t, 1, decode[session.View](t, rec).ChildrenOffset)

	rec = do(t, h, http.MethodGet, base+"/history", nil)
	history := decode[struct {
		Entries  []map[string]int `json:"entries"`
		Position int              `json:"position"`
	}](t, rec)
	assert.Len(t, history.Entries, 3)
	assert.Equal(t, 2, history.Position)

	rec = do(t, h, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionErrors(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/sessions/nope/back", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/sessions/" + decode[session.View](t, rec).SessionID

	rec = do(t, h, http.MethodPost, base+"/open", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, base+"/open", strings.NewReader("{"))
	req.ContentLength = 1
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rec = do(t, h, http.MethodPost, base+"/back", nil)
	step := decode[StepResponse](t, rec)
	assert.False(t, step.Moved)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t)
	do(t, h, http.MethodPost, "/sessions", map[string]any{"union_id": 1})

	rec := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "lineage_sessions_active 1")
	assert.Contains(t, body, `lineage_navigations_total{action="navigate"} 1`)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	rel := relation.New(store.New())
	b, err := tree.NewBuilder(rel, 3)
	require.NoError(t, err)
	srv := New(rel, b, session.NewRegistry(rel, b), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
