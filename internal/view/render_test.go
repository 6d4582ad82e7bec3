package view

import (
	"HealthyTrack-Dashboard/internal/model"
	"HealthyTrack-Dashboard/internal/service"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "&amp;&lt;&gt;&quot;&#39;", EscapeHTML(`&<>"'`))
	assert.Equal(t, "&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;", EscapeHTML("<script>alert('x')</script>"))
	assert.Equal(t, "", EscapeHTML(""))
	assert.Equal(t, "plain text", EscapeHTML("plain text"))
	assert.Equal(t, "&amp;amp;", EscapeHTML("&amp;"))
}

func TestBarPercent(t *testing.T) {
	assert.Equal(t, float64(0), BarPercent(0, 2000))
	assert.Equal(t, float64(50), BarPercent(1000, 2000))
	assert.Equal(t, float64(100), BarPercent(5000, 2000))
	assert.Equal(t, float64(0), BarPercent(10, 0))
	assert.Equal(t, float64(0), BarPercent(-20, 2000))
}

func TestSummaryPanelWithZeroCalories(t *testing.T) {
	panel := NewSummaryPanel(model.Summary{}, model.DefaultGoals())
	assert.Equal(t, float64(0), panel.Progress.Calories)
	assert.Equal(t, float64(0), panel.Progress.Protein)
}

func TestSummaryPanel(t *testing.T) {
	panel := NewSummaryPanel(model.Summary{Calories: 1234.6, Protein: 75, Carbs: 300, Fat: 20}, model.Goals{Calories: 0, Protein: 150, Carbs: 250, Fat: 80})

	assert.Equal(t, 1235, panel.Calories)
	assert.Equal(t, float64(2000), panel.CalorieGoal)
	assert.InDelta(t, 61.73, panel.Progress.Calories, 0.001)
	assert.Equal(t, float64(50), panel.Progress.Protein)
	assert.Equal(t, float64(100), panel.Progress.Carbs)
	assert.Equal(t, float64(25), panel.Progress.Fat)
}

func TestEntriesHTML(t *testing.T) {
	assert.Equal(t, noEntriesHTML, EntriesHTML(nil))

	html := EntriesHTML([]model.MealRecord{
		{Name: `<b>Tom & "Jerry's"</b>`, Calories: 99.5, Protein: 1.4, CreatedAt: "2024-01-01 08:00:00"},
		{Name: "", Calories: 10},
	})
	assert.Contains(t, html, "<strong>&lt;b&gt;Tom &amp; &quot;Jerry&#39;s&quot;&lt;/b&gt;</strong>")
	assert.Contains(t, html, "100 kcal")
	assert.Contains(t, html, "P 1 • C 0 • F 0")
	assert.Contains(t, html, "<strong>—</strong>")
	assert.Equal(t, 2, strings.Count(html, `class="entry"`))
}

func chatState(turns ...model.ChatTurn) service.ChatState {
	return service.ChatState{Started: true, History: turns}
}

func TestChatHTML(t *testing.T) {
	assert.Equal(t, chatWelcomeHTML, ChatHTML(service.ChatState{}, true))

	state := chatState(
		model.ChatTurn{Speaker: model.SpeakerUser, Text: "<i>hi</i>"},
		model.ChatTurn{Speaker: model.SpeakerAssistant, Text: "<b>Eat</b> protein"},
		model.ChatTurn{Speaker: model.SpeakerSystemError, Text: "Failed to get response"},
		model.ChatTurn{Speaker: model.SpeakerSystemError, Text: "Network error: refused"},
	)

	trusted := ChatHTML(state, true)
	assert.Contains(t, trusted, "👤 You: &lt;i&gt;hi&lt;/i&gt;")
	assert.Contains(t, trusted, "🤖 Coach: <b>Eat</b> protein")
	assert.Contains(t, trusted, "❌ Error: Failed to get response")
	assert.Contains(t, trusted, "❌ Network error: refused")

	untrusted := ChatHTML(state, false)
	assert.Contains(t, untrusted, "🤖 Coach: Eat protein")
	assert.NotContains(t, untrusted, "<b>")
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Aim for 1.6g per kg. Spread it out.", PlainText("<p>Aim for <b>1.6g</b> per kg.</p><p>Spread it out.</p>"))
	assert.Equal(t, "line one line two", PlainText("line one<br>line two"))
	assert.Equal(t, "a < b", PlainText("a &lt; b"))
}

func TestPhotoCardHTML(t *testing.T) {
	assert.Equal(t, emptyCardHTML, PhotoCardHTML(nil))

	html := PhotoCardHTML(&service.NutritionCard{
		DetectedLabel: "rice",
		Filename:      "1_rice.png",
		Meals:         []service.CardMeal{{Name: "RICE", Calories: 130.5, Protein: 2.7}},
		Totals:        &model.Summary{Calories: 131, Protein: 3},
	})
	assert.Contains(t, html, "Detected Food: rice")
	assert.Contains(t, html, "Image saved as: 1_rice.png")
	assert.Contains(t, html, ">RICE<")
	assert.Contains(t, html, "<span>130.5</span> kcal")
	assert.Contains(t, html, "Total Calories: <span>131</span>")
}

func TestAuthControlsHTML(t *testing.T) {
	assert.Empty(t, AuthControlsHTML(model.AnonymousSession()))
	assert.Contains(t, AuthControlsHTML(model.NewSession(1, "<ana>")), "👤 &lt;ana&gt;")
}
