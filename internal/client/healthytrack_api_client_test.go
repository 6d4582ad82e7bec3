package client

import (
	"HealthyTrack-Dashboard/internal/model"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *HealthyTrackClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewHealthyTrackClient(srv.URL, 5, nil)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestCurrentUser(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/current_user", r.URL.Path)
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err)
		writeJSON(w, http.StatusOK, map[string]any{"user_id": 7, "username": "ana"})
	}))

	user, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user.UserID)
	assert.Equal(t, int64(7), *user.UserID)
	assert.Equal(t, "ana", user.Username)
}

func TestCurrentUserUnauthorized(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"user_id": nil})
	}))

	_, err := c.CurrentUser(context.Background())
	assert.ErrorIs(t, err, model.ErrAuthRequired)
}

func TestLoginSessionCookieIsKept(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var creds model.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ana", creds.Username)
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "user_id": 3, "username": "ana"})
	})
	mux.HandleFunc("/api/current_user", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session")
		if err != nil || cookie.Value != "abc" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"user_id": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user_id": 3, "username": "ana"})
	})
	c := newTestClient(t, mux)

	resp, err := c.Login(context.Background(), model.Credentials{Username: "ana", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.UserID)

	user, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
}

func TestLoginRejectedWith401IsNotAuthRequired(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid credentials"})
	}))

	_, err := c.Login(context.Background(), model.Credentials{Username: "ana", Password: "bad"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, model.ErrAuthRequired))
	var rej *model.RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "Invalid credentials", rej.Message)
	assert.Equal(t, http.StatusUnauthorized, rej.StatusCode)
}

func TestSignupRejectedWithoutBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.Signup(context.Background(), model.SignupCredentials{Username: "ana", Password: "pass"})
	assert.Equal(t, "Signup failed", model.RejectionText(err, "Signup failed"))
}

func TestLogFood(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload model.MealPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "typed", payload.Source)
		writeJSON(w, http.StatusOK, map[string]any{"saved": true, "record": map[string]any{"id": 9, "name": payload.Name, "calories": payload.Calories}})
	}))

	rec, err := c.LogFood(context.Background(), model.MealPayload{Name: "Oats", Calories: 150, Source: "typed"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), rec.ID)
	assert.Equal(t, "Oats", rec.Name)
}

func TestLogFoodOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantAuth   bool
		wantReason string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"User not logged in"}`, true, ""},
		{"saved false", http.StatusOK, `{"saved":false,"error":"db locked"}`, false, "db locked"},
		{"bad request", http.StatusBadRequest, `{"error":"Missing name"}`, false, "Missing name"},
		{"html error", http.StatusBadGateway, `<html>bad gateway</html>`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))

			_, err := c.LogFood(context.Background(), model.MealPayload{Name: "x"})
			require.Error(t, err)
			assert.Equal(t, tt.wantAuth, errors.Is(err, model.ErrAuthRequired))
			if !tt.wantAuth {
				assert.Equal(t, tt.wantReason, model.RejectionText(err, ""))
			}
		})
	}
}

func TestDailySummaryAndEntries(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/daily_summary", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-05-01", r.URL.Query().Get("date"))
		writeJSON(w, http.StatusOK, map[string]any{"date": "2024-05-01", "summary": map[string]any{"calories": 820.4, "protein": 51}})
	})
	mux.HandleFunc("/api/get_entries", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"entries": []map[string]any{
			{"id": 1, "name": "Eggs", "calories": 155, "protein": nil, "created_at": "2024-05-01 08:00:00"},
		}})
	})
	c := newTestClient(t, mux)

	sum, err := c.DailySummary(context.Background(), "2024-05-01")
	require.NoError(t, err)
	assert.InDelta(t, 820.4, sum.Calories, 0.001)
	assert.Equal(t, float64(0), sum.Fat)

	entries, err := c.GetEntries(context.Background(), "2024-05-01")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Eggs", entries[0].Name)
	assert.Equal(t, float64(0), entries[0].Protein)
}

func TestDailySummaryMissingObject(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"date": "2024-05-01"})
	}))

	sum, err := c.DailySummary(context.Background(), "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, model.Summary{}, *sum)
}

func TestUploadPhotoSendsMultipartField(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("photo")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "meal.png", header.Filename)
		assert.Equal(t, "imagebytes", string(data))
		writeJSON(w, http.StatusOK, map[string]any{
			"saved":          true,
			"filename":       "171_meal.png",
			"detected_label": "rice, chicken",
			"meals_logged":   []map[string]any{{"name": "rice", "calories": 130}},
			"daily_summary":  map[string]any{"calories": 130},
		})
	}))

	resp, err := c.UploadPhoto(context.Background(), "meal.png", strings.NewReader("imagebytes"))
	require.NoError(t, err)
	assert.Equal(t, "rice, chicken", resp.DetectedLabel)
	require.Len(t, resp.MealsLogged, 1)
	require.NotNil(t, resp.DailySummary)
}

func TestFitnessChatErrors(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	}))

	_, err := c.FitnessChat(context.Background(), "hi")
	var rej *model.RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Empty(t, rej.Message)
	assert.Equal(t, "boom", rej.Body)
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c, err := NewHealthyTrackClient(srv.URL, 1, nil)
	require.NoError(t, err)

	_, err = c.FitnessChat(context.Background(), "hi")
	var netErr *model.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "fitness_chat", netErr.Op)
	assert.NotEmpty(t, netErr.Reason())
}
