package heuristic

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/newspulse/internal/news"
)

func TestAnalyzeSentiment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want string
	}{
		{"Прибыль Сбербанка показала рост", Positive},
		{"Обвал рубля и риск дефолта", Negative},
		{"Совет директоров собрался в понедельник", Neutral},
		{"Record profit and strong growth", Positive},
	}
	svc := New()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			got, err := svc.AnalyzeSentiment(context.Background(), tt.text)
			require.NoError(t, err)
			require.Equal(t, tt.want, got.Label)
			require.Len(t, got.Scores, 3)
		})
	}
}

func TestExtractEntities(t *testing.T) {
	t.Parallel()

	text := "Сбербанк и Альфа-Банк: Набиуллина в Москве заявила о ставке 16% и выпуске на 50 млрд рублей, $120 за баррель"
	got, err := New().ExtractEntities(context.Background(), text)
	require.NoError(t, err)
	require.Equal(t, []string{"Сбербанк", "Альфа-Банк"}, got.Organizations)
	require.Equal(t, []string{"Набиуллина"}, got.Persons)
	require.Empty(t, got.Locations)
	require.Equal(t, []string{"50 млрд", "16%", "$120"}, got.Money)
	require.Equal(t, "Сбербанк", got.Leading())

	empty, err := New().ExtractEntities(context.Background(), "Погода в выходные")
	require.NoError(t, err)
	require.Zero(t, empty.Count())
	require.NotNil(t, empty.Organizations)
}

func TestClassifyImportanceIsCapped(t *testing.T) {
	t.Parallel()

	svc := New()
	score, err := svc.ClassifyImportance(context.Background(),
		"Экстренное заседание: ЦБ повысил ставку, рост доходности",
		strings.Repeat("Сбербанк газпром втб ", 80),
		"ЦБ РФ")
	require.NoError(t, err)
	require.Equal(t, MaxImportance, score)

	low, err := svc.ClassifyImportance(context.Background(), "Заметка", "", "Блог")
	require.NoError(t, err)
	require.InDelta(t, 0.3, low, 1e-9)
}

func TestGenerateDraft(t *testing.T) {
	t.Parallel()

	article := news.Article{Title: "Курс рубля укрепился"}
	draft, err := New().GenerateDraft(context.Background(), article, news.Entities{Organizations: []string{"Цб"}}, 0.8)
	require.NoError(t, err)
	require.Equal(t, "Анализ: Курс рубля укрепился", draft.Title)
	require.Len(t, draft.Bullets, 3)
	require.Contains(t, draft.Bullets[0], "Цб")
	require.Contains(t, draft.Lead, "Цб")
	require.Equal(t, "currency", draft.Category)
	require.False(t, draft.GeneratedByAI)

	fallback, err := New().GenerateDraft(context.Background(), news.Article{Title: "Новости дня"}, news.Entities{}, 0.3)
	require.NoError(t, err)
	require.Contains(t, fallback.Bullets[0], "рынка")
	require.Equal(t, "finance", fallback.Category)
}
