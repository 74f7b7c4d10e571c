package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerbaras/fengshen/pkg/sources"
)

// Mock implementations for testing

type mockSource struct {
	readLinkFunc      func(ctx context.Context, url string) (sources.LinkResult, error)
	getTextFunc       func(ctx context.Context, urn string) (*sources.Text, error)
	getParagraphsFunc func(ctx context.Context, urn string) ([]string, error)
}

func (m *mockSource) ReadLink(ctx context.Context, url string) (sources.LinkResult, error) {
	if m.readLinkFunc != nil {
		return m.readLinkFunc(ctx, url)
	}
	return nil, nil
}

func (m *mockSource) GetText(ctx context.Context, urn string) (*sources.Text, error) {
	if m.getTextFunc != nil {
		return m.getTextFunc(ctx, urn)
	}
	return nil, nil
}

func (m *mockSource) GetParagraphs(ctx context.Context, urn string) ([]string, error) {
	if m.getParagraphsFunc != nil {
		return m.getParagraphsFunc(ctx, urn)
	}
	return nil, nil
}

type mockResolver struct {
	resolveFunc func(ctx context.Context, pageURL string) (string, error)
}

func (m *mockResolver) Resolve(ctx context.Context, pageURL string) (string, error) {
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, pageURL)
	}
	return "", nil
}

func chapterURL(n int) string {
	return fmt.Sprintf("https://ctext.org/fengshen-yanyi/%d/zh", n)
}

func urnResolver() *mockResolver {
	return &mockResolver{
		resolveFunc: func(ctx context.Context, pageURL string) (string, error) {
			return "ctp:" + pageURL, nil
		},
	}
}

func TestFetcherGetText(t *testing.T) {
	source := &mockSource{
		getTextFunc: func(ctx context.Context, urn string) (*sources.Text, error) {
			assert.Equal(t, "ctp:https://ctext.org/fengshen-yanyi/1/zh", urn)
			return &sources.Text{
				Title:    " 第一回　紂王女媧宮進香 ",
				Fulltext: []string{"  詩曰：", "", "   ", "混沌初分盤古先。"},
			}, nil
		},
		getParagraphsFunc: func(ctx context.Context, urn string) ([]string, error) {
			t.Fatal("GetParagraphs should not be called")
			return nil, nil
		},
	}
	f := NewFetcher(source, urnResolver(), FetcherConfig{ChapterURL: chapterURL})

	ch, err := f.Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, ch.Number)
	assert.Equal(t, "第一回　紂王女媧宮進香", ch.Title)
	assert.Equal(t, []string{"詩曰：", "混沌初分盤古先。"}, ch.Paragraphs)
	assert.Equal(t, "https://ctext.org/fengshen-yanyi/1/zh", ch.SourceURL)
	assert.Equal(t, "ctp:https://ctext.org/fengshen-yanyi/1/zh", ch.URN)
}

func TestFetcherFallsBackToParagraphs(t *testing.T) {
	tests := []struct {
		name    string
		getText func(ctx context.Context, urn string) (*sources.Text, error)
	}{
		{
			name: "gettext error",
			getText: func(ctx context.Context, urn string) (*sources.Text, error) {
				return nil, errors.New("bad gateway")
			},
		},
		{
			name: "gettext without fulltext",
			getText: func(ctx context.Context, urn string) (*sources.Text, error) {
				return &sources.Text{Subsections: []string{"ctp:a"}}, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &mockSource{
				getTextFunc: tt.getText,
				getParagraphsFunc: func(ctx context.Context, urn string) ([]string, error) {
					return []string{"甲。", "乙。"}, nil
				},
			}
			f := NewFetcher(source, urnResolver(), FetcherConfig{ChapterURL: chapterURL})

			ch, err := f.Fetch(context.Background(), 3)
			require.NoError(t, err)
			assert.Equal(t, "第3回", ch.Title)
			assert.Equal(t, []string{"甲。", "乙。"}, ch.Paragraphs)
		})
	}
}

func TestFetcherCustomDefaultTitle(t *testing.T) {
	source := &mockSource{
		getTextFunc: func(ctx context.Context, urn string) (*sources.Text, error) {
			return &sources.Text{Fulltext: []string{"甲。"}}, nil
		},
	}
	f := NewFetcher(source, urnResolver(), FetcherConfig{
		ChapterURL:   chapterURL,
		DefaultTitle: func(n int) string { return fmt.Sprintf("Chapter %d", n) },
	})

	ch, err := f.Fetch(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Chapter 7", ch.Title)
}

func TestFetcherNoContent(t *testing.T) {
	calls := 0
	source := &mockSource{
		getTextFunc: func(ctx context.Context, urn string) (*sources.Text, error) {
			calls++
			return &sources.Text{Title: "空", Fulltext: []string{" ", ""}}, nil
		},
		getParagraphsFunc: func(ctx context.Context, urn string) ([]string, error) {
			return []string{"\n"}, nil
		},
	}
	f := NewFetcher(source, urnResolver(), FetcherConfig{ChapterURL: chapterURL, Retries: 2})

	_, err := f.Fetch(context.Background(), 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, sources.ErrNoContent)
	assert.Contains(t, err.Error(), "fetch chapter 2")
	assert.Equal(t, 3, calls, "empty chapters are retried like any other failure")
}

func TestFetcherRetriesTransientErrors(t *testing.T) {
	attempts := 0
	resolver := &mockResolver{
		resolveFunc: func(ctx context.Context, pageURL string) (string, error) {
			attempts++
			if attempts == 1 {
				return "", errors.New("connection reset")
			}
			return "ctp:fengshen-yanyi/4", nil
		},
	}
	source := &mockSource{
		getTextFunc: func(ctx context.Context, urn string) (*sources.Text, error) {
			return &sources.Text{Title: "第四回", Fulltext: []string{"甲。"}}, nil
		},
	}
	f := NewFetcher(source, resolver, FetcherConfig{ChapterURL: chapterURL, Retries: 1})

	ch, err := f.Fetch(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "第四回", ch.Title)
	assert.Equal(t, 2, attempts)
}

func TestFetcherGivesUpAfterRetries(t *testing.T) {
	attempts := 0
	boom := errors.New("connection reset")
	resolver := &mockResolver{
		resolveFunc: func(ctx context.Context, pageURL string) (string, error) {
			attempts++
			return "", boom
		},
	}
	f := NewFetcher(&mockSource{}, resolver, FetcherConfig{ChapterURL: chapterURL, Retries: 2})

	_, err := f.Fetch(context.Background(), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, attempts)
}

func TestFetcherRetryBackoff(t *testing.T) {
	const delay = 20 * time.Millisecond
	var attempts []time.Time
	resolver := &mockResolver{
		resolveFunc: func(ctx context.Context, pageURL string) (string, error) {
			attempts = append(attempts, time.Now())
			return "", errors.New("connection reset")
		},
	}
	var logs bytes.Buffer
	f := NewFetcher(&mockSource{}, resolver, FetcherConfig{
		ChapterURL: chapterURL,
		Delay:      delay,
		Retries:    2,
		Logger:     slog.New(slog.NewTextHandler(&logs, nil)),
	})

	_, err := f.Fetch(context.Background(), 9)
	require.Error(t, err)
	require.Len(t, attempts, 3)
	assert.GreaterOrEqual(t, attempts[1].Sub(attempts[0]), delay)
	assert.GreaterOrEqual(t, attempts[2].Sub(attempts[1]), 2*delay)

	out := logs.String()
	assert.Equal(t, 2, strings.Count(out, "Retrying chapter"), "no retry follows the last attempt")
	assert.Contains(t, out, "retry=1 wait=20ms")
	assert.Contains(t, out, "retry=2 wait=40ms")
	assert.NotContains(t, out, "retry=3")
}

func TestFetcherRateLimitIsNotRetried(t *testing.T) {
	limit := &sources.APIError{Status: 200, Code: sources.RequestLimitCode, Description: "达到请求限制"}

	t.Run("from gettext", func(t *testing.T) {
		attempts := 0
		source := &mockSource{
			getTextFunc: func(ctx context.Context, urn string) (*sources.Text, error) {
				attempts++
				return nil, limit
			},
			getParagraphsFunc: func(ctx context.Context, urn string) ([]string, error) {
				t.Fatal("a rate limited gettext must not fall back")
				return nil, nil
			},
		}
		f := NewFetcher(source, urnResolver(), FetcherConfig{ChapterURL: chapterURL, Retries: 3})

		_, err := f.Fetch(context.Background(), 6)
		require.Error(t, err)
		assert.True(t, sources.IsRateLimit(err, nil))
		assert.Equal(t, 1, attempts)
	})

	t.Run("from marker text", func(t *testing.T) {
		attempts := 0
		resolver := &mockResolver{
			resolveFunc: func(ctx context.Context, pageURL string) (string, error) {
				attempts++
				return "", errors.New("readlink: 达到请求限制")
			},
		}
		f := NewFetcher(&mockSource{}, resolver, FetcherConfig{
			ChapterURL:       chapterURL,
			Retries:          3,
			RateLimitMarkers: sources.DefaultRateLimitMarkers,
		})

		_, err := f.Fetch(context.Background(), 6)
		require.Error(t, err)
		assert.True(t, sources.IsRateLimit(err, sources.DefaultRateLimitMarkers))
		assert.Equal(t, 1, attempts)
	})
}
