package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Really-Great-Tech/chareli-backend/internal/config"
)

// SmsVerifier starts and checks phone verifications. The production
// implementation delegates to Twilio Verify; the stored OTP row then carries a
// sentinel secret instead of a local code.
type SmsVerifier interface {
	IsConfigured() bool
	StartVerification(ctx context.Context, phoneNumber string) error
	CheckVerification(ctx context.Context, phoneNumber string, code string) (bool, error)
}

const twilioVerifyBaseURL = "https://verify.twilio.com/v2/Services"

type twilioVerifier struct {
	accountSID string
	authToken  string
	verifySID  string
	httpClient *http.Client
	configured bool
}

func NewTwilioVerifier(cfg config.TwilioConfig) SmsVerifier {
	v := &twilioVerifier{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if cfg.AccountSID != "" && cfg.AuthToken != "" && cfg.VerifySID != "" {
		v.accountSID = cfg.AccountSID
		v.authToken = cfg.AuthToken
		v.verifySID = cfg.VerifySID
		v.configured = true
	}
	return v
}

func (v *twilioVerifier) IsConfigured() bool { return v.configured }

func (v *twilioVerifier) StartVerification(ctx context.Context, phoneNumber string) error {
	if !v.configured {
		return fmt.Errorf("twilio verify is not configured (missing account_sid, auth_token or verify_sid)")
	}

	endpoint := fmt.Sprintf("%s/%s/Verifications", twilioVerifyBaseURL, v.verifySID)
	data := url.Values{}
	data.Set("To", phoneNumber)
	data.Set("Channel", "sms")

	body, err := v.post(ctx, endpoint, data)
	if err != nil {
		return fmt.Errorf("twilio verify start: %w", err)
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("twilio verify start: decode response: %w", err)
	}
	if resp.Status != "pending" {
		return fmt.Errorf("twilio verify start: unexpected status %q", resp.Status)
	}
	return nil
}

func (v *twilioVerifier) CheckVerification(ctx context.Context, phoneNumber string, code string) (bool, error) {
	if !v.configured {
		return false, fmt.Errorf("twilio verify is not configured (missing account_sid, auth_token or verify_sid)")
	}

	endpoint := fmt.Sprintf("%s/%s/VerificationCheck", twilioVerifyBaseURL, v.verifySID)
	data := url.Values{}
	data.Set("To", phoneNumber)
	data.Set("Code", code)

	body, err := v.post(ctx, endpoint, data)
	if err != nil {
		return false, fmt.Errorf("twilio verify check: %w", err)
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("twilio verify check: decode response: %w", err)
	}
	return resp.Status == "approved", nil
}

func (v *twilioVerifier) post(ctx context.Context, endpoint string, data url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(v.accountSID, v.authToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
