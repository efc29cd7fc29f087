// Package chaturl builds the canonical URL the embedded chat surface is
// bootstrapped with and allowed to stay on.
package chaturl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"chat-widget/internal/model"
)

const DefaultBaseURL = "https://cdn.infoset.app/chat/open_chat.html"

var (
	ErrInvalidBaseURL = errors.New("chaturl: base url is not an absolute url")
	ErrInvalidVisitor = errors.New("chaturl: visitor cannot be encoded")
)

// Encoding selects how the visitor is written into the URL.
type Encoding int

const (
	// EncodingJSON writes the visitor as one JSON-encoded "visitor" parameter.
	EncodingJSON Encoding = iota
	// EncodingFlattened writes visitor[field]=value pairs, as older surface content expects.
	EncodingFlattened
)

type Builder struct {
	Platform model.Platform
	Encoding Encoding
}

// BaseURL returns the configured surface URL, else fallback, else DefaultBaseURL.
func BaseURL(cfg model.Configuration, fallback string) string {
	if base := strings.TrimSpace(cfg.WebviewURL); base != "" {
		return base
	}
	if base := strings.TrimSpace(fallback); base != "" {
		return base
	}
	return DefaultBaseURL
}

// Build serializes cfg onto baseURL. Parameters are written in a fixed order:
// platform, apiKey, the active platform key, visitor, tags.
func (b Builder) Build(baseURL string, cfg model.Configuration) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	q := &query{}
	q.add("platform", string(b.Platform))
	q.add("apiKey", strings.TrimSpace(cfg.APIKey))

	if key := cfg.PlatformKey(b.Platform); key != "" {
		switch b.Platform {
		case model.PlatformIOS:
			q.add("iosKey", key)
		case model.PlatformAndroid:
			q.add("androidKey", key)
		}
	}

	if cfg.Visitor != nil {
		if err := b.appendVisitor(q, cfg.Visitor); err != nil {
			return "", err
		}
	}

	if len(cfg.Tags) > 0 {
		q.add("tags", strings.Join(cfg.Tags, ","))
	}

	if u.RawQuery != "" {
		u.RawQuery = u.RawQuery + "&" + q.encode()
	} else {
		u.RawQuery = q.encode()
	}
	return u.String(), nil
}

func (b Builder) appendVisitor(q *query, v *model.Visitor) error {
	if b.Encoding == EncodingFlattened {
		return flattenVisitor(q, v)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidVisitor, err)
	}
	q.add("visitor", strings.TrimSuffix(buf.String(), "\n"))
	return nil
}

func flattenVisitor(q *query, v *model.Visitor) error {
	fields := []struct {
		key, val string
	}{
		{"id", v.ID.String()},
		{"firstName", v.FirstName},
		{"lastName", v.LastName},
		{"email", v.Email},
		{"phone", v.Phone},
		{"photoUrl", v.PhotoURL},
		{"userHash", v.UserHash},
		{"createdAt", v.CreatedAt},
		{"company", v.Company},
	}
	for _, f := range fields {
		if f.val != "" {
			q.add("visitor["+f.key+"]", f.val)
		}
	}
	if len(v.CustomFields) > 0 {
		return flattenValue(q, "visitor[customFields]", v.CustomFields)
	}
	return nil
}

func flattenValue(q *query, prefix string, value any) error {
	switch val := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := flattenValue(q, prefix+"["+k+"]", val[k]); err != nil {
				return err
			}
		}
	case string:
		q.add(prefix, val)
	case nil:
		q.add(prefix, "")
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidVisitor, prefix, err)
		}
		q.add(prefix, string(raw))
	}
	return nil
}

// query keeps insertion order; url.Values sorts keys on Encode.
type query struct {
	pairs []string
}

func (q *query) add(key, value string) {
	q.pairs = append(q.pairs, url.QueryEscape(key)+"="+url.QueryEscape(value))
}

func (q *query) encode() string {
	return strings.Join(q.pairs, "&")
}
