package curlparse

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/j-veylop/points-dashboard-tui/internal/config"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

const chromeCurl = `curl 'https://poe.com/api/gql_POST' \
  -H 'accept: */*' \
  -H 'content-type: application/json' \
  -b 'p-b=abc%3D%3D; p-lat=xyz; __cf_bm=q"1"' \
  -H 'origin: https://poe.com' \
  -H 'poe-formkey: 0123456789abcdef' \
  -H 'poe-queryname: PointsHistoryPageColumnViewerPaginationQuery' \
  -H 'poe-revision: rev-1' \
  -H 'poe-tag-id: tag-1' \
  -H 'poe-tchannel: poe-chan105-8888-abc' \
  --data-raw '{"queryName":"x","variables":{}}'`

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"Plain", "curl -s https://x", []string{"curl", "-s", "https://x"}},
		{"SingleQuotes", `curl 'a b' c`, []string{"curl", "a b", "c"}},
		{"DoubleQuotesEscapes", `curl "a \"b\" \\ c"`, []string{"curl", `a "b" \ c`}},
		{"DoubleQuotesKeepOtherBackslash", `"a\nb"`, []string{`a\nb`}},
		{"ANSIC", `$'x\ny\'z'`, []string{"x\ny'z"}},
		{"Continuation", "curl \\\n  -H 'a: b'", []string{"curl", "-H", "a: b"}},
		{"CRLFContinuation", "curl \\\r\n -s", []string{"curl", "-s"}},
		{"EmptyQuoted", `curl ''`, []string{"curl", ""}},
		{"Adjacent", `a'b'"c"`, []string{"abc"}},
		{"EscapedSpace", `a\ b`, []string{"a b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.in)
			if err != nil {
				t.Fatalf("Tokenize() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokenize_Unterminated(t *testing.T) {
	for _, in := range []string{`curl 'abc`, `curl "abc`, `curl $'abc`} {
		if _, err := Tokenize(in); !errors.Is(err, ErrUnterminatedQuote) {
			t.Errorf("Tokenize(%q) error = %v, want ErrUnterminatedQuote", in, err)
		}
	}
}

func TestParse_ChromeCommand(t *testing.T) {
	res, err := Parse(chromeCurl)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	want := models.Credentials{
		Cookie:   `p-b=abc%3D%3D; p-lat=xyz; __cf_bm=q"1"`,
		FormKey:  "0123456789abcdef",
		TChannel: "poe-chan105-8888-abc",
		Revision: "rev-1",
		TagID:    "tag-1",
	}
	if diff := cmp.Diff(want, res.Credentials); diff != "" {
		t.Errorf("Credentials mismatch (-want +got):\n%s", diff)
	}
	if res.URL != "https://poe.com/api/gql_POST" {
		t.Errorf("URL = %q", res.URL)
	}
	if res.Headers["content-type"] != "application/json" {
		t.Errorf("content-type header = %q", res.Headers["content-type"])
	}
}

func TestParse_CookieHeaderAndDefaults(t *testing.T) {
	cmd := `curl "https://poe.com/api/gql_POST" -H "Cookie: p-b=1" --header "POE-FORMKEY: fk" -H "poe-tchannel: ch"`

	res, err := Parse(cmd)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if res.Credentials.Cookie != "p-b=1" {
		t.Errorf("Cookie = %q", res.Credentials.Cookie)
	}
	if res.Credentials.FormKey != "fk" {
		t.Errorf("FormKey = %q", res.Credentials.FormKey)
	}
	if res.Credentials.Revision != config.DefaultRevision {
		t.Errorf("Revision = %q, want default", res.Credentials.Revision)
	}
	if res.Credentials.TagID != config.DefaultTagID {
		t.Errorf("TagID = %q, want default", res.Credentials.TagID)
	}
}

func TestParse_LongFlagWithEquals(t *testing.T) {
	cmd := `curl --cookie=p-b=2 --header=poe-formkey:fk -H poe-tchannel:ch -XPOST https://poe.com`
	res, err := Parse(cmd)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if res.Credentials.Cookie != "p-b=2" || res.Credentials.FormKey != "fk" {
		t.Errorf("Credentials = %+v", res.Credentials)
	}
	if res.Method != "POST" {
		t.Errorf("Method = %q, want POST", res.Method)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"Empty", "   ", ErrEmptyCommand},
		{"NotCurl", "wget https://poe.com", ErrNotCurl},
		{"Unterminated", "curl -H 'cookie: x", ErrUnterminatedQuote},
		{"MissingValue", "curl https://poe.com -H", ErrMissingValue},
		{"MissingCredentials", "curl https://poe.com -b 'p-b=1'", ErrMissingCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParse_MissingCredentialsReturnsPartial(t *testing.T) {
	res, err := Parse("curl https://poe.com -b 'p-b=1'")
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("error = %v, want ErrMissingCredentials", err)
	}
	if res == nil || res.Credentials.Cookie != "p-b=1" {
		t.Fatalf("expected partial result with cookie, got %+v", res)
	}
	if got := Missing(res.Credentials); !cmp.Equal(got, []string{"formkey", "tchannel"}) {
		t.Errorf("Missing() = %v", got)
	}
}

func TestIsCurl(t *testing.T) {
	for _, w := range []string{"curl", "/usr/bin/curl", "CURL.EXE"} {
		if !isCurl(w) {
			t.Errorf("isCurl(%q) = false", w)
		}
	}
	if isCurl("curling") {
		t.Error("isCurl(curling) = true")
	}
}
