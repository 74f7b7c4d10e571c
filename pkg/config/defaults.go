package config

import (
	"time"

	"github.com/kerbaras/fengshen/pkg/sources"
	"github.com/kerbaras/fengshen/pkg/text"
)

// Default returns the configuration for scraping 封神演義 from ctext.org.
func Default() *Config {
	return &Config{
		Book:       "封神演義",
		Author:     "許仲琳",
		FilePrefix: "fengshen",
		OutDir:     "./out",
		Chapters:   "",
		Delay:      0.8,
		Retries:    1,
		Remap:      "",
		CText: CTextConfig{
			APIURL:           sources.DefaultAPIURL,
			ReadLinkURL:      sources.DefaultReadLinkURL,
			ChapterURL:       "https://ctext.org/fengshen-yanyi/{n}/zh",
			Language:         "zh",
			URNKeys:          append([]string(nil), sources.DefaultURNKeys...),
			URNPrefix:        sources.DefaultURNPrefix,
			RateLimitMarkers: append([]string(nil), sources.DefaultRateLimitMarkers...),
			Timeout:          15 * time.Second,
		},
		Text: TextConfig{
			Terminators: text.DefaultTerminators,
			TitleFormat: "第%d回",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
