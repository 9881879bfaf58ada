package html

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/newspulse/internal/identity"
	"github.com/JakeFAU/newspulse/internal/news"
	"github.com/JakeFAU/newspulse/internal/source"
)

type fakeFetcher struct {
	body string
	err  error
	urls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, req news.FetchRequest) (news.FetchResponse, error) {
	f.urls = append(f.urls, req.URL)
	if f.err != nil {
		return news.FetchResponse{}, f.err
	}
	return news.FetchResponse{URL: req.URL, StatusCode: 200, Body: []byte(f.body)}, nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func rbcSource() source.Source {
	return source.Source{
		Name: "РБК Экономика",
		URL:  "https://www.rbc.ru/economics/",
		Kind: source.HTML{Selectors: source.Selectors{
			Container: ".item",
			Title:     ".item__title",
			Link:      "a.item__link",
			Summary:   ".item__text",
			Time:      "time",
		}},
	}
}

const page = `<html><body>
<div class="item">
  <a class="item__link" href="/economics/10/05/2024/abc"><span class="item__title">ЦБ сохранил ключевую ставку 16%</span></a>
  <p class="item__text">  Банк России   оставил ставку
  без изменений. </p>
  <time datetime="2024-05-10T09:30:00Z">09:30</time>
</div>
<div class="item">
  <a class="item__link" href="https://www.facebook.com/rbc/posts/1"><span class="item__title">Обсуждение новостей в соцсетях</span></a>
</div>
<div class="item">
  <a class="item__link" href="/short"><span class="item__title">Коротко</span></a>
</div>
<div class="item">
  <a class="item__link" href="//www.rbc.ru/finances/1"><span class="item__title">Рубль укрепился к доллару</span></a>
  <span class="meta"><time>2 часа назад</time></span>
</div>
<div class="item">
  <a class="item__link" href="#top"><span class="item__title">Ссылка на начало страницы</span></a>
</div>
</body></html>`

func TestCollectExtractsCandidates(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{body: page}
	a := New(f, fixedClock{testNow}, nil, 0)

	got, err := a.Collect(context.Background(), rbcSource())
	require.NoError(t, err)
	require.Equal(t, []string{"https://www.rbc.ru/economics/"}, f.urls)
	require.Len(t, got, 2)

	first := got[0]
	require.Equal(t, "ЦБ сохранил ключевую ставку 16%", first.Title)
	require.Equal(t, "https://www.rbc.ru/economics/10/05/2024/abc", first.URL)
	require.Equal(t, "Банк России оставил ставку без изменений.", first.Content)
	require.Equal(t, identity.Fingerprint(first.Title, first.URL), first.ID)
	require.Equal(t, "РБК Экономика", first.SourceName)
	require.Equal(t, "ru", first.Language)
	require.Equal(t, "russia", first.Country)
	require.True(t, first.PublishedAt.Equal(time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)))
	require.True(t, first.CollectedAt.Equal(testNow))

	second := got[1]
	require.Equal(t, "https://www.rbc.ru/finances/1", second.URL)
	require.True(t, second.PublishedAt.Equal(testNow.Add(-2*time.Hour)))
	require.Empty(t, second.Content)
}

func TestCollectCapsCandidates(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, `<div class="item"><a class="item__link" href="/news/%d"><span class="item__title">Новость рынка номер %d</span></a></div>`, i, i)
	}
	b.WriteString("</body></html>")

	a := New(&fakeFetcher{body: b.String()}, fixedClock{testNow}, nil, 0)
	got, err := a.Collect(context.Background(), rbcSource())
	require.NoError(t, err)
	require.Len(t, got, DefaultLimit)
	require.Equal(t, "https://www.rbc.ru/news/0", got[0].URL)

	a = New(&fakeFetcher{body: b.String()}, fixedClock{testNow}, nil, 3)
	got, err = a.Collect(context.Background(), rbcSource())
	require.NoError(t, err)
	require.Len(t, got, 3)
}

func TestCollectFallsBackToContainerAnchor(t *testing.T) {
	t.Parallel()

	src := source.Source{
		Name: "Банки.ру",
		URL:  "https://www.banki.ru/news/",
		Kind: source.HTML{Selectors: source.Selectors{Container: "a.news-link"}},
	}
	body := `<a class="news-link" href="/news/lenta/?id=1">Сбербанк снизил ставки по вкладам</a>`

	got, err := New(&fakeFetcher{body: body}, fixedClock{testNow}, nil, 0).Collect(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "https://www.banki.ru/news/lenta/?id=1", got[0].URL)
	require.Equal(t, "Сбербанк снизил ставки по вкладам", got[0].Title)
	require.True(t, got[0].PublishedAt.Equal(testNow))
}

func TestCollectFetchError(t *testing.T) {
	t.Parallel()

	a := New(&fakeFetcher{err: errors.New("status 503: Service Unavailable")}, fixedClock{testNow}, nil, 0)
	_, err := a.Collect(context.Background(), rbcSource())
	require.Error(t, err)
	require.Contains(t, err.Error(), "РБК Экономика")
	require.Contains(t, err.Error(), "503")
}

func TestCollectRejectsFeedSource(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{body: page}
	src := source.Source{Name: "Интерфакс", URL: "https://www.interfax.ru/rss.asp", Kind: source.Feed{}}
	_, err := New(f, fixedClock{testNow}, nil, 0).Collect(context.Background(), src)
	require.Error(t, err)
	require.Empty(t, f.urls)
}

func TestCollectCustomDenylist(t *testing.T) {
	t.Parallel()

	a := New(&fakeFetcher{body: page}, fixedClock{testNow}, identity.NewDenylist([]string{"finances"}), 0)
	got, err := a.Collect(context.Background(), rbcSource())
	require.NoError(t, err)
	urls := make([]string, 0, len(got))
	for _, article := range got {
		urls = append(urls, article.URL)
	}
	require.Contains(t, urls, "https://www.facebook.com/rbc/posts/1")
	require.NotContains(t, urls, "https://www.rbc.ru/finances/1")
}
