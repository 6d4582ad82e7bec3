package service

import (
	"HealthyTrack-Dashboard/internal/model"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMealLogger struct {
	payloads []model.MealPayload
	record   *model.MealRecord
	err      error
}

func (f *fakeMealLogger) LogFood(ctx context.Context, payload model.MealPayload) (*model.MealRecord, error) {
	f.payloads = append(f.payloads, payload)
	if f.err != nil {
		return nil, f.err
	}
	if f.record != nil {
		return f.record, nil
	}
	return &model.MealRecord{ID: 1, Name: payload.Name, Calories: payload.Calories}, nil
}

type mealFixture struct {
	svc       *MealService
	api       *fakeMealLogger
	auth      *fakeAuth
	reloader  *fakeReloader
	notifier  *fakeNotifier
}

func newMealFixture() *mealFixture {
	f := &mealFixture{
		api:       &fakeMealLogger{},
		auth:      &fakeAuth{},
		reloader:  &fakeReloader{},
		notifier:  &fakeNotifier{},
	}
	f.svc = NewMealService(f.api, f.auth, f.reloader, f.notifier, nil)
	f.svc.now = fixedClock(time.Date(2024, 2, 29, 18, 4, 5, 0, time.Local))
	return f
}

func TestSubmitMealSuccess(t *testing.T) {
	f := newMealFixture()
	draft := model.MealDraft{Name: " Oatmeal ", Calories: "150", Protein: "5.5", Carbs: "", Fat: "abc"}

	record, err := f.svc.Submit(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, "Oatmeal", record.Name)

	require.Len(t, f.api.payloads, 1)
	assert.Equal(t, model.MealPayload{
		Name:      "Oatmeal",
		Calories:  150,
		Protein:   5.5,
		Carbs:     0,
		Fat:       0,
		Quantity:  "",
		Source:    "typed",
		CreatedAt: "2024-02-29 18:04:05",
	}, f.api.payloads[0])

	assert.Equal(t, model.MealDraft{}, f.svc.Draft())
	assert.Equal(t, 1, f.reloader.count())
	assert.Empty(t, f.notifier.all())
}

func TestSubmitMealAuthRequiredKeepsDraft(t *testing.T) {
	f := newMealFixture()
	f.api.err = fmt.Errorf("log_food: %w", model.ErrAuthRequired)
	draft := model.MealDraft{Name: "Oatmeal", Calories: "150"}

	_, err := f.svc.Submit(context.Background(), draft)
	assert.ErrorIs(t, err, model.ErrAuthRequired)

	assert.Equal(t, 1, f.auth.count())
	assert.Equal(t, draft, f.svc.Draft())
	assert.Zero(t, f.reloader.count())
	assert.Equal(t, []string{"Please log in to save entries."}, f.notifier.all())
}

func TestSubmitMealFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"saved false", &model.RejectionError{StatusCode: 200, Message: "disk full"}, "Error: disk full"},
		{"no message", &model.RejectionError{StatusCode: 500}, "Error: Failed to save meal"},
		{"network", &model.NetworkError{Op: "log_food", Err: errors.New("no route to host")}, "Network error: no route to host"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMealFixture()
			f.api.err = tt.err
			draft := model.MealDraft{Name: "Toast", Calories: "90"}

			_, err := f.svc.Submit(context.Background(), draft)
			require.Error(t, err)
			assert.Equal(t, []string{tt.want}, f.notifier.all())
			assert.Equal(t, draft, f.svc.Draft())
			assert.Zero(t, f.auth.count())
			assert.Zero(t, f.reloader.count())
		})
	}
}

func TestSubmitMealRequiresName(t *testing.T) {
	f := newMealFixture()

	_, err := f.svc.Submit(context.Background(), model.MealDraft{Name: "  ", Calories: "10"})
	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, f.api.payloads)
}

func TestParseAmount(t *testing.T) {
	assert.Equal(t, float64(12), parseAmount("12"))
	assert.Equal(t, 3.25, parseAmount(" 3.25 "))
	assert.Equal(t, float64(0), parseAmount(""))
	assert.Equal(t, float64(0), parseAmount("NaN"))
	assert.Equal(t, float64(0), parseAmount("lots"))
}
