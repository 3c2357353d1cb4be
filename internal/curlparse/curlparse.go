// Package curlparse extracts Poe API credentials from a "Copy as cURL"
// command line.
package curlparse

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/j-veylop/points-dashboard-tui/internal/config"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

var (
	// ErrEmptyCommand is returned for blank input.
	ErrEmptyCommand = errors.New("empty command")
	// ErrNotCurl is returned when the first word is not curl.
	ErrNotCurl = errors.New("not a curl command")
	// ErrUnterminatedQuote is returned when a quoted string is not closed.
	ErrUnterminatedQuote = errors.New("unterminated quote")
	// ErrMissingValue is returned when a flag that takes a value ends the command.
	ErrMissingValue = errors.New("flag is missing its value")
	// ErrMissingCredentials is returned when required credentials are absent.
	ErrMissingCredentials = errors.New("missing required credentials")
)

// Header names carrying Poe credentials.
const (
	HeaderCookie   = "cookie"
	HeaderFormKey  = "poe-formkey"
	HeaderTChannel = "poe-tchannel"
	HeaderRevision = "poe-revision"
	HeaderTagID    = "poe-tag-id"
)

// Result is a parsed curl command.
type Result struct {
	Headers     map[string]string
	URL         string
	Method      string
	Credentials models.Credentials
}

// flags that consume the following word.
var valueFlags = map[string]bool{
	"-H": true, "--header": true,
	"-b": true, "--cookie": true,
	"-X": true, "--request": true,
	"-d": true, "--data": true, "--data-raw": true, "--data-binary": true,
	"--data-urlencode": true, "--data-ascii": true,
	"-A": true, "--user-agent": true,
	"-e": true, "--referer": true,
	"-u": true, "--user": true,
	"-o": true, "--output": true,
	"-m": true, "--max-time": true,
	"--connect-timeout": true,
	"--url":             true,
}

// Parse tokenizes and parses a curl command. On ErrMissingCredentials the
// partially filled result is still returned.
func Parse(cmd string) (*Result, error) {
	if strings.TrimSpace(cmd) == "" {
		return nil, ErrEmptyCommand
	}

	tokens, err := Tokenize(cmd)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyCommand
	}
	if !isCurl(tokens[0]) {
		return nil, ErrNotCurl
	}

	res := &Result{Headers: make(map[string]string)}
	var cookieFlag string

	for i := 1; i < len(tokens); i++ {
		tok := tokens[i]
		flag, value, hasValue := splitFlag(tok)

		if !strings.HasPrefix(flag, "-") || flag == "-" {
			if res.URL == "" {
				res.URL = tok
			}
			continue
		}
		if !valueFlags[flag] {
			continue
		}
		if !hasValue {
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("%w: %s", ErrMissingValue, flag)
			}
			i++
			value = tokens[i]
		}

		switch flag {
		case "-H", "--header":
			name, v, ok := strings.Cut(value, ":")
			if !ok {
				continue
			}
			res.Headers[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(v)
		case "-b", "--cookie":
			cookieFlag = strings.TrimSpace(value)
		case "-X", "--request":
			res.Method = strings.ToUpper(value)
		case "--url":
			res.URL = value
		}
	}

	creds := models.Credentials{
		Cookie:   cookieFlag,
		FormKey:  res.Headers[HeaderFormKey],
		TChannel: res.Headers[HeaderTChannel],
		Revision: res.Headers[HeaderRevision],
		TagID:    res.Headers[HeaderTagID],
	}
	if creds.Cookie == "" {
		creds.Cookie = res.Headers[HeaderCookie]
	}
	if creds.Revision == "" {
		creds.Revision = config.DefaultRevision
	}
	if creds.TagID == "" {
		creds.TagID = config.DefaultTagID
	}
	res.Credentials = creds

	if missing := Missing(creds); len(missing) > 0 {
		return res, fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return res, nil
}

// Missing lists the required credential fields that are empty.
func Missing(c models.Credentials) []string {
	var missing []string
	if c.Cookie == "" {
		missing = append(missing, "cookie")
	}
	if c.FormKey == "" {
		missing = append(missing, "formkey")
	}
	if c.TChannel == "" {
		missing = append(missing, "tchannel")
	}
	return missing
}

func isCurl(word string) bool {
	base := strings.ToLower(filepath.Base(word))
	return base == "curl" || base == "curl.exe"
}

// splitFlag handles --flag=value and attached short values like -Hname:v.
func splitFlag(tok string) (flag, value string, hasValue bool) {
	if strings.HasPrefix(tok, "--") {
		if name, v, ok := strings.Cut(tok, "="); ok {
			return name, v, true
		}
		return tok, "", false
	}
	if len(tok) > 2 && tok[0] == '-' && valueFlags[tok[:2]] {
		return tok[:2], tok[2:], true
	}
	return tok, "", false
}
