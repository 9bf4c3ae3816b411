// Package checkin implements the CHECKIN and BUYCS commands: asking the
// Loco load balancer which host/port a client should open its main session
// against.
package checkin

import (
	"context"

	"lococlient/internal/facade"
	"lococlient/internal/session"
)

// CheckinRequest is the CHECKIN request record.
type CheckinRequest struct {
	UserID   int64  `bson:"userId"`
	ModelName string `bson:"modelName"`
	OSVersion string `bson:"os"`
	MCCMNC    string `bson:"MCCMNC"`
}

// CheckinResponse is the CHECKIN response record.
type CheckinResponse struct {
	Status      int32  `bson:"status"`
	Host        string `bson:"host"`
	Port        int32  `bson:"port"`
	CacheExpire int32  `bson:"cacheExpire"`
}

// BuyCSRequest is the BUYCS request record, used to ask for a
// customer-service session endpoint instead of the regular chat endpoint.
type BuyCSRequest struct {
	UserID int64 `bson:"userId"`
}

// BuyCSResponse is the BUYCS response record.
type BuyCSResponse struct {
	Status int32  `bson:"status"`
	Host   string `bson:"host"`
	Port   int32  `bson:"port"`
}

// Client issues checkin-family commands over a session.
type Client struct {
	Session *session.Session
}

// New wraps a session in a checkin Client.
func New(s *session.Session) *Client {
	return &Client{Session: s}
}

// Checkin asks the load balancer for a main-session host/port.
func (c *Client) Checkin(ctx context.Context, req CheckinRequest) (CheckinResponse, error) {
	return facade.Call[CheckinRequest, CheckinResponse](ctx, c.Session, "CHECKIN", 0, req)
}

// BuyCS asks the load balancer for a customer-service session host/port.
func (c *Client) BuyCS(ctx context.Context, req BuyCSRequest) (BuyCSResponse, error) {
	return facade.Call[BuyCSRequest, BuyCSResponse](ctx, c.Session, "BUYCS", 0, req)
}
