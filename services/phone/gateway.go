package phone

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nri-matrimony/matrimony/config"
	"github.com/nri-matrimony/matrimony/services/logging"
	"github.com/nri-matrimony/matrimony/services/mail"
	"go.uber.org/zap"
)

const subject = "Verification code"

// DeliveryGateway validates a phone number and delivers a verification code to it.
type DeliveryGateway interface {
	Send(ctx context.Context, phoneNumber, code string) error
	Configured() bool
}

func messageBody(code string, expiry time.Duration) string {
	return fmt.Sprintf("Your NRIChristianMatrimony verification code is: %s. This code expires in %d minutes.",
		code, int(expiry.Minutes()))
}

// screen runs the line-type lookup and normalization shared by every gateway.
func screen(ctx context.Context, lookup LineTypeLookup, logger *logging.Service, phoneNumber string) (string, error) {
	lineType, err := lookup.Lookup(ctx, phoneNumber)
	if err != nil {
		logger.Warn("line type lookup failed", logging.Phone(phoneNumber), zap.Error(err))
		return "", rejected(MsgInvalidNumber, err)
	}

	if lineType.IsVoIP() {
		logger.Info("rejected voip number", logging.Phone(phoneNumber), zap.String("line_type", string(lineType)))
		return "", rejected(MsgVOIPRejected, nil)
	}

	digits, err := NormalizeNANP(phoneNumber)
	if err != nil {
		return "", rejected(MsgNotNANP, err)
	}

	return digits, nil
}

// EmailBridgeGateway relays codes through a carrier email-to-SMS bridge.
type EmailBridgeGateway struct {
	lookup LineTypeLookup
	sender mail.Sender
	domain string
	expiry time.Duration
	logger *logging.Service
}

func NewEmailBridgeGateway(lookup LineTypeLookup, sender mail.Sender, domain string, expiry time.Duration, logger *logging.Service) *EmailBridgeGateway {
	return &EmailBridgeGateway{
		lookup: lookup,
		sender: sender,
		domain: strings.TrimPrefix(strings.TrimSpace(domain), "@"),
		expiry: expiry,
		logger: logger,
	}
}

func (g *EmailBridgeGateway) Configured() bool {
	return g.domain != "" && g.lookup != nil && g.sender != nil && g.sender.Configured()
}

func (g *EmailBridgeGateway) Send(ctx context.Context, phoneNumber, code string) error {
	digits, err := screen(ctx, g.lookup, g.logger, phoneNumber)
	if err != nil {
		return err
	}

	address := digits + "@" + g.domain
	if err := g.sender.SendPlain(ctx, []string{address}, subject, messageBody(code, g.expiry)); err != nil {
		g.logger.Error("email bridge delivery failed", logging.Phone(phoneNumber), zap.Error(err))
		return sendFailed(err)
	}

	g.logger.Info("verification code relayed", logging.Phone(phoneNumber), zap.String("gateway_domain", g.domain))
	return nil
}

// SMSGateway sends codes directly through the Twilio Messages API.
type SMSGateway struct {
	lookup     LineTypeLookup
	baseURL    string
	accountSID string
	authToken  string
	from       string
	expiry     time.Duration
	client     *http.Client
	logger     *logging.Service
}

func NewSMSGateway(lookup LineTypeLookup, cfg config.PhoneSMSConfig, expiry time.Duration, logger *logging.Service) *SMSGateway {
	return &SMSGateway{
		lookup:     lookup,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.FromNumber,
		expiry:     expiry,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

func (g *SMSGateway) Configured() bool {
	return g.lookup != nil && g.baseURL != "" && g.accountSID != "" && g.authToken != "" && g.from != ""
}

func (g *SMSGateway) Send(ctx context.Context, phoneNumber, code string) error {
	digits, err := screen(ctx, g.lookup, g.logger, phoneNumber)
	if err != nil {
		return err
	}

	form := url.Values{
		"To":   {"+1" + digits},
		"From": {g.from},
		"Body": {messageBody(code, g.expiry)},
	}
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", g.baseURL, url.PathEscape(g.accountSID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return sendFailed(err)
	}
	req.SetBasicAuth(g.accountSID, g.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("sms request failed", logging.Phone(phoneNumber), zap.Error(err))
		return sendFailed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.logger.Error("sms provider rejected message",
			logging.Phone(phoneNumber),
			zap.Int("status", resp.StatusCode))
		return sendFailed(fmt.Errorf("sms provider returned status %d", resp.StatusCode))
	}

	g.logger.Info("verification code sent by sms", logging.Phone(phoneNumber))
	return nil
}
