package bypass

import (
	"net/http"
	"testing"
)

func TestAnalyze(t *testing.T) {
	cases := []struct {
		name       string
		res        Response
		wantHit    bool
		wantSource string
	}{
		{
			name: "clean 200",
			res: Response{
				StatusCode: http.StatusOK,
				Body:       []byte("<html>products</html>"),
			},
		},
		{
			name: "cloudflare server header",
			res: Response{
				StatusCode: http.StatusForbidden,
				Headers:    map[string][]string{"Server": {"cloudflare"}},
			},
			wantHit:    true,
			wantSource: "Cloudflare",
		},
		{
			name: "cloudflare challenge body on 503",
			res: Response{
				StatusCode: http.StatusServiceUnavailable,
				Body:       []byte(`<title>Attention Required! | Cloudflare</title>`),
			},
			wantHit:    true,
			wantSource: "Cloudflare",
		},
		{
			name: "akamai block page",
			res: Response{
				StatusCode: http.StatusForbidden,
				Body:       []byte("Access Denied. Reference #18.1234"),
			},
			wantHit:    true,
			wantSource: "Akamai",
		},
		{
			name: "datadome header",
			res: Response{
				StatusCode: http.StatusForbidden,
				Headers:    map[string][]string{"X-DataDome": {"protected"}},
			},
			wantHit:    true,
			wantSource: "DataDome",
		},
		{
			name: "perimeterx captcha",
			res: Response{
				StatusCode: http.StatusForbidden,
				Body:       []byte(`<div id="px-captcha"></div>`),
			},
			wantHit:    true,
			wantSource: "PerimeterX",
		},
		{
			name: "403 without vendor markers",
			res: Response{
				StatusCode: http.StatusForbidden,
				Body:       []byte("plain forbidden"),
			},
		},
		{
			name: "challenge markers on 200 are ignored",
			res: Response{
				StatusCode: http.StatusOK,
				Headers:    map[string][]string{"Server": {"cloudflare"}},
				Body:       []byte("served through cloudflare but not blocked"),
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			hit, source := Analyze(c.res, DefaultDetectors())
			if hit != c.wantHit || source != c.wantSource {
				t.Errorf("Analyze = (%v, %q), want (%v, %q)", hit, source, c.wantHit, c.wantSource)
			}
		})
	}
}

func TestHeaderLookupIsCaseInsensitive(t *testing.T) {
	res := Response{
		StatusCode: http.StatusForbidden,
		Headers:    map[string][]string{"server": {"Cloudflare"}},
	}
	hit, source := Analyze(res, DefaultDetectors())
	if !hit || source != "Cloudflare" {
		t.Errorf("Analyze = (%v, %q)", hit, source)
	}
}
