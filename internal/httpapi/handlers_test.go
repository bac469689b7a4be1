package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/draftlab/mlbb-draft-backend/internal/engine"
	"github.com/draftlab/mlbb-draft-backend/internal/pool"
	"github.com/draftlab/mlbb-draft-backend/internal/ws"
	"github.com/draftlab/mlbb-draft-backend/pkg/types"
)

const testPoolJSON = `{
  "version": "api-test",
  "source": "fixture",
  "roles": ["exp_lane", "jungle", "mid_lane", "gold_lane", "roam"],
  "heroes": {
    "suyou": {
      "possibleRoles": ["exp_lane", "jungle"],
      "rolePower": {"exp_lane": 0.86, "jungle": 0.77},
      "tags": ["assassin"],
      "meta": {"tier": "S", "pickCount": 40, "banCount": 22, "pickWinCount": 24}
    },
    "joy": {
      "possibleRoles": ["jungle"],
      "rolePower": {"jungle": 0.80},
      "tags": ["assassin"],
      "meta": {"tier": "A", "pickCount": 30, "banCount": 12, "pickWinCount": 16}
    },
    "kagura": {
      "possibleRoles": ["mid_lane"],
      "rolePower": {"mid_lane": 0.85},
      "tags": ["mage"],
      "meta": {"tier": "S", "pickCount": 33, "banCount": 16, "pickWinCount": 19}
    },
    "claude": {
      "possibleRoles": ["gold_lane"],
      "rolePower": {"gold_lane": 0.85},
      "tags": ["marksman"],
      "meta": {"tier": "S", "pickCount": 36, "banCount": 11, "pickWinCount": 21}
    },
    "franco": {
      "possibleRoles": ["roam"],
      "rolePower": {"roam": 0.75},
      "tags": ["tank"],
      "meta": {"tier": "B", "pickCount": 18, "banCount": 2, "pickWinCount": 9}
    },
    "chou": {
      "possibleRoles": ["exp_lane", "roam"],
      "rolePower": {"exp_lane": 0.80, "roam": 0.70},
      "tags": ["fighter"],
      "meta": {"tier": "A", "pickCount": 35, "banCount": 10, "pickWinCount": 19}
    }
  }
}`

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pool.json")
	require.NoError(t, os.WriteFile(path, []byte(testPoolJSON), 0o644))

	store, err := pool.NewStore(context.Background(), pool.FileSource(path, ""), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Inbox() <- pool.Shutdown{} })

	eng := engine.New(zap.NewNop())
	return SetupRoutes(NewServer(eng, store, zap.NewNop()), ws.NewHandler(eng, store, zap.NewNop()))
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRecommend_OK(t *testing.T) {
	h := testRouter(t)

	rec := postJSON(t, h, "/api/draft/recommend", types.RecommendRequest{})
	require.Equal(t, http.StatusOK, rec.Code)

	var out engine.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, engine.ActionBan, out.Mode)
	assert.Equal(t, engine.SideAlly, out.Side)
	assert.Equal(t, "api-test", out.PoolVersion)
	assert.Len(t, out.Recommendations, 6)
}

func TestRecommend_MidDraft(t *testing.T) {
	h := testRouter(t)

	rec := postJSON(t, h, "/api/draft/recommend", types.RecommendRequest{
		TurnIndex: 4,
		Picks:     types.SidePair{Enemy: []string{"joy"}},
		Bans:      types.SidePair{Ally: []string{"kagura"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out engine.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, engine.ActionPick, out.Mode)
	assert.Len(t, out.Recommendations, 4)
	for _, c := range out.Recommendations {
		assert.NotEqual(t, "joy", c.Hero)
		assert.NotEqual(t, "kagura", c.Hero)
	}
}

func TestRecommend_ValidationRejected(t *testing.T) {
	h := testRouter(t)

	rec := postJSON(t, h, "/api/draft/recommend", types.RecommendRequest{
		Picks: types.SidePair{Ally: []string{"nosuchhero"}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var out types.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Contains(t, out.Error, "unknown hero")
}

func TestRecommend_MalformedBody(t *testing.T) {
	h := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/draft/recommend", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssign_OK(t *testing.T) {
	h := testRouter(t)

	rec := postJSON(t, h, "/api/draft/assign", types.AssignRequest{
		Heroes: []string{"suyou", "joy"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Roles       []string              `json:"roles"`
		Assignment  engine.RoleAssignment `json:"assignment"`
		PoolVersion string                `json:"poolVersion"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Assignment.IsFeasible)
	assert.Equal(t, "suyou", out.Assignment.BestAssignment["exp_lane"])
	assert.Equal(t, "joy", out.Assignment.BestAssignment["jungle"])
	assert.Equal(t, "api-test", out.PoolVersion)
}

func TestAssign_SidePayload(t *testing.T) {
	h := testRouter(t)

	rec := postJSON(t, h, "/api/draft/assign", types.AssignRequest{
		Picks: &types.SidePair{Ally: []string{"chou"}, Enemy: []string{"joy"}},
		Side:  "ally",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Assignment engine.RoleAssignment `json:"assignment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "chou", out.Assignment.BestAssignment["exp_lane"])
}

func TestAssign_UnknownHeroRejected(t *testing.T) {
	h := testRouter(t)

	rec := postJSON(t, h, "/api/draft/assign", types.AssignRequest{
		Heroes: []string{"nosuchhero"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeta(t *testing.T) {
	h := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/draft/meta", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Version      string                               `json:"version"`
		Roles        []string                             `json:"roles"`
		HeroCount    int                                  `json:"heroCount"`
		SequenceKey  string                               `json:"sequenceKey"`
		Sequence     []engine.SequenceStep                `json:"sequence"`
		PhaseWeights map[engine.Phase]engine.WeightVector `json:"phaseWeights"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "api-test", out.Version)
	assert.Equal(t, 6, out.HeroCount)
	assert.Equal(t, "mlbb_standard_bo5", out.SequenceKey)
	assert.Len(t, out.Sequence, 15)
	assert.Len(t, out.PhaseWeights, 4)
}

func TestHealthz(t *testing.T) {
	h := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
