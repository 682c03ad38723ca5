package phone

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nri-matrimony/matrimony/config"
)

type LineType string

const (
	LineTypeMobile       LineType = "mobile"
	LineTypeLandline     LineType = "landline"
	LineTypeFixedVoIP    LineType = "fixedVoip"
	LineTypeNonFixedVoIP LineType = "nonFixedVoip"
	LineTypeVoIP         LineType = "voip"
	LineTypeUnknown      LineType = "unknown"
)

// IsVoIP reports whether the line type must be refused as a verification target.
func (t LineType) IsVoIP() bool {
	return t == LineTypeVoIP || t == LineTypeNonFixedVoIP
}

type LineTypeLookup interface {
	Lookup(ctx context.Context, phoneNumber string) (LineType, error)
}

var ErrLookupFailed = errors.New("line type lookup failed")

type lookupResponse struct {
	Valid                bool `json:"valid"`
	LineTypeIntelligence *struct {
		Type      string `json:"type"`
		ErrorCode *int   `json:"error_code"`
	} `json:"line_type_intelligence"`
}

// TwilioLookup queries the Twilio Lookup v2 API for line type intelligence.
type TwilioLookup struct {
	baseURL    string
	accountSID string
	authToken  string
	client     *http.Client
}

func NewTwilioLookup(cfg config.PhoneLookupConfig) *TwilioLookup {
	return &TwilioLookup{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

func (l *TwilioLookup) Configured() bool {
	return l.baseURL != "" && l.accountSID != "" && l.authToken != ""
}

func (l *TwilioLookup) Lookup(ctx context.Context, phoneNumber string) (LineType, error) {
	endpoint := fmt.Sprintf("%s/v2/PhoneNumbers/%s?Fields=line_type_intelligence",
		l.baseURL, url.PathEscape(strings.TrimSpace(phoneNumber)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	req.SetBasicAuth(l.accountSID, l.authToken)
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrLookupFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrLookupFailed, resp.StatusCode)
	}

	var result lookupResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", ErrLookupFailed, err)
	}
	if !result.Valid {
		return "", fmt.Errorf("%w: number reported invalid", ErrLookupFailed)
	}

	if result.LineTypeIntelligence == nil || result.LineTypeIntelligence.Type == "" {
		return LineTypeUnknown, nil
	}

	return LineType(result.LineTypeIntelligence.Type), nil
}
