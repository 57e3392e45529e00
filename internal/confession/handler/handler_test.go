package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"confide/internal/confession"
	"confide/internal/identity"
	"confide/internal/platform/metrics"
	dErrors "confide/pkg/domain-errors"
	"confide/pkg/testutil"
)

type noopEvents struct{}

func (noopEvents) ConfessionAdded(*confession.Confession) {}

type ConfessionHandlerSuite struct {
	suite.Suite
	router chi.Router
	users  *identity.InMemoryStore
}

func TestConfessionHandlerSuite(t *testing.T) {
	suite.Run(t, new(ConfessionHandlerSuite))
}

func (s *ConfessionHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.users = identity.NewInMemoryStore()
	service := confession.NewService(
		confession.NewInMemoryStore(), s.users, noopEvents{}, logger, metrics.NewForTest(), 280)

	s.router = chi.NewRouter()
	New(service, logger).Register(s.router)
}

func (s *ConfessionHandlerSuite) createConfession(body map[string]any) map[string]any {
	s.T().Helper()
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/confessions/create", body)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
	return (*resp)["confession"].(map[string]any)
}

func (s *ConfessionHandlerSuite) TestCreate() {
	s.Run("creates a confession", func() {
		created := s.createConfession(map[string]any{
			"text":     "I water my plastic plants",
			"category": "everyday",
			"location": map[string]float64{"longitude": 13.4, "latitude": 52.5},
		})
		s.NotEmpty(created["id"])
		s.Equal("I water my plastic plants", created["text"])
	})

	s.Run("rejects a malformed body", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/confessions/create", "{not json")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("rejects empty text", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/confessions/create",
			map[string]any{"text": ""})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})
}

func (s *ConfessionHandlerSuite) TestGetAndList() {
	created := s.createConfession(map[string]any{"text": "listed", "category": "work"})
	id := created["id"].(string)

	s.Run("fetches by ID", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/api/confessions/"+id)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertJSONContains(s.T(), rr, "text", "listed")
	})

	s.Run("unknown ID is not found", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/api/confessions/"+uuid.NewString())
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})

	s.Run("malformed ID is a bad request", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/api/confessions/not-a-uuid")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("lists with pagination metadata", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/api/confessions/?page=1&size=5")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		page := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
		s.EqualValues(1, (*page)["total"])
		s.EqualValues(1, (*page)["page"])
		s.EqualValues(5, (*page)["size"])
	})
}

func (s *ConfessionHandlerSuite) TestNearby() {
	s.createConfession(map[string]any{
		"text":     "close by",
		"location": map[string]float64{"longitude": 13.4132, "latitude": 52.5219},
	})

	s.Run("requires coordinates", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/api/confessions/nearby")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("finds confessions within the radius", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet,
			"/api/confessions/nearby?longitude=13.4132&latitude=52.5219&maxDistance=500")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		resp := testutil.UnmarshalResponse[map[string][]map[string]any](s.T(), rr)
		s.Len((*resp)["confessions"], 1)
	})
}

func (s *ConfessionHandlerSuite) TestUpdateAndDelete() {
	authorID := uuid.New()
	s.Require().NoError(s.users.Create(s.T().Context(), &identity.User{ID: authorID, Username: "TealCrane901"}))
	created := s.createConfession(map[string]any{"text": "editable", "authorId": authorID.String()})
	id := created["id"].(string)

	s.Run("author updates", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/api/confessions/"+id,
			map[string]any{"text": "edited", "authorId": authorID.String()})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})

	s.Run("stranger is forbidden", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodDelete, "/api/confessions/"+id,
			map[string]any{"authorId": uuid.NewString()})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
	})

	s.Run("author deletes", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodDelete, "/api/confessions/"+id,
			map[string]any{"authorId": authorID.String()})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})
}
