package view

import (
	"HealthyTrack-Dashboard/internal/model"
	"HealthyTrack-Dashboard/internal/service"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	fallbackCalorieGoal = 2000

	noEntriesHTML     = `<p class="muted small">No entries yet.</p>`
	entriesFailedHTML = `<p class="muted small">Unable to load entries.</p>`
	chatWelcomeHTML   = `<p class="muted small">Hi! I'm your fitness coach. Ask me about nutrition, workouts or your daily totals.</p>`
	emptyCardHTML     = `<p class="muted small">No card yet. Upload an image or select a dish.</p>`
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML escapes the five characters that matter inside element content
// and quoted attributes.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

type Progress struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// SummaryPanel is the totals card. Totals are rounded for display; Progress
// holds bar widths in percent.
type SummaryPanel struct {
	Calories    int      `json:"calories"`
	Protein     int      `json:"protein"`
	Carbs       int      `json:"carbs"`
	Fat         int      `json:"fat"`
	CalorieGoal float64  `json:"calorie_goal"`
	Progress    Progress `json:"progress"`
}

// BarPercent is min(value/goal*100, 100), floored at zero.
func BarPercent(value, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return math.Max(0, math.Min(value/goal*100, 100))
}

func NewSummaryPanel(summary model.Summary, goals model.Goals) SummaryPanel {
	calorieGoal := goals.Calories
	if calorieGoal <= 0 {
		calorieGoal = fallbackCalorieGoal
	}
	defaults := model.DefaultGoals()
	orDefault := func(v, d float64) float64 {
		if v <= 0 {
			return d
		}
		return v
	}

	return SummaryPanel{
		Calories:    roundInt(summary.Calories),
		Protein:     roundInt(summary.Protein),
		Carbs:       roundInt(summary.Carbs),
		Fat:         roundInt(summary.Fat),
		CalorieGoal: calorieGoal,
		Progress: Progress{
			Calories: BarPercent(summary.Calories, calorieGoal),
			Protein:  BarPercent(summary.Protein, orDefault(goals.Protein, defaults.Protein)),
			Carbs:    BarPercent(summary.Carbs, orDefault(goals.Carbs, defaults.Carbs)),
			Fat:      BarPercent(summary.Fat, orDefault(goals.Fat, defaults.Fat)),
		},
	}
}

func EntriesHTML(entries []model.MealRecord) string {
	if len(entries) == 0 {
		return noEntriesHTML
	}
	var b strings.Builder
	for _, e := range entries {
		name := e.Name
		if name == "" {
			name = "—"
		}
		fmt.Fprintf(&b,
			`<div class="entry"><div style="flex:1"><strong>%s</strong><div class="muted small">%s</div></div>`+
				`<div style="text-align:right">%d kcal<br /><span class="muted small">P %d • C %d • F %d</span></div></div>`,
			EscapeHTML(name), EscapeHTML(e.CreatedAt),
			roundInt(e.Calories), roundInt(e.Protein), roundInt(e.Carbs), roundInt(e.Fat))
	}
	return b.String()
}

// ChatHTML renders the chat history. Assistant text is inserted as HTML only
// when trustAssistant is set.
func ChatHTML(state service.ChatState, trustAssistant bool) string {
	if !state.Started {
		return chatWelcomeHTML
	}
	var b strings.Builder
	for _, turn := range state.History {
		switch turn.Speaker {
		case model.SpeakerUser:
			b.WriteString(`<div class="chat-turn user">👤 You: ` + EscapeHTML(turn.Text) + `</div>`)
		case model.SpeakerAssistant:
			body := turn.Text
			if !trustAssistant {
				body = EscapeHTML(PlainText(turn.Text))
			}
			b.WriteString(`<div class="chat-turn assistant">🤖 Coach: ` + body + `</div>`)
		case model.SpeakerSystemError:
			text := "Error: " + turn.Text
			if strings.HasPrefix(turn.Text, "Network error: ") {
				text = turn.Text
			}
			b.WriteString(`<div class="chat-turn error">❌ ` + EscapeHTML(text) + `</div>`)
		}
	}
	return b.String()
}

func PhotoCardHTML(card *service.NutritionCard) string {
	if card == nil {
		return emptyCardHTML
	}
	var b strings.Builder
	fmt.Fprintf(&b, `<h4>🍲 Detected Food: %s</h4><p class="saved-as">Image saved as: %s</p>`,
		EscapeHTML(card.DetectedLabel), EscapeHTML(card.Filename))

	if len(card.Meals) > 0 {
		b.WriteString(`<div class="card-meals"><h5>📊 Nutrition (per 100g estimated)</h5>`)
		for _, meal := range card.Meals {
			fmt.Fprintf(&b,
				`<div class="card-meal"><p class="meal-name">%s</p>`+
					`<p>🔥 Calories: <span>%s</span> kcal</p><p>💪 Protein: <span>%s</span>g</p>`+
					`<p>🥖 Carbs: <span>%s</span>g</p><p>🧈 Fat: <span>%s</span>g</p></div>`,
				EscapeHTML(meal.Name),
				formatNumber(meal.Calories), formatNumber(meal.Protein), formatNumber(meal.Carbs), formatNumber(meal.Fat))
		}
		b.WriteString(`</div>`)
	}

	if card.Totals != nil {
		fmt.Fprintf(&b,
			`<div class="card-totals"><h5>📈 Today's Total</h5>`+
				`<p>Total Calories: <span>%d</span> kcal</p><p>Total Protein: <span>%d</span>g</p>`+
				`<p>Total Carbs: <span>%d</span>g</p><p>Total Fat: <span>%d</span>g</p></div>`,
			roundInt(card.Totals.Calories), roundInt(card.Totals.Protein), roundInt(card.Totals.Carbs), roundInt(card.Totals.Fat))
	}
	return b.String()
}

func AuthControlsHTML(session model.Session) string {
	if !session.Authenticated {
		return ""
	}
	return `<span class="user-badge">👤 ` + EscapeHTML(session.Name()) + `</span><button id="logoutBtn" class="btn ghost">Logout</button>`
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
