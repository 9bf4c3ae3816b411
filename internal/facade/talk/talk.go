// Package talk implements the main chat command repertoire: login, channel
// listing, messaging, and channel membership/meta operations. The method
// repertoire and request/response shapes are carried over from the original
// client's talk module.
package talk

import (
	"context"

	"lococlient/internal/facade"
	"lococlient/internal/session"
)

// Client issues talk-family commands over a session.
type Client struct {
	Session *session.Session
}

// New wraps a session in a talk Client.
func New(s *session.Session) *Client {
	return &Client{Session: s}
}

// LoginListRequest is the LOGINLIST request record.
type LoginListRequest struct {
	OSVersion string  `bson:"os"`
	NetType   int32   `bson:"ntype"`
	MCCMNC    string  `bson:"MCCMNC"`
	Revision  int32   `bson:"revision"`
	Chats     []int64 `bson:"chatIds,omitempty"`
}

// LoginListResponse is the LOGINLIST response record.
type LoginListResponse struct {
	Status   int32   `bson:"status"`
	UserID   int64   `bson:"userId"`
	Revision int32   `bson:"revision"`
	ChatIDs  []int64 `bson:"chatIds"`
}

// Login issues LOGINLIST, the initial post-checkin handshake that enumerates
// the account's channel ids.
func (c *Client) Login(ctx context.Context, req LoginListRequest) (LoginListResponse, error) {
	return facade.Call[LoginListRequest, LoginListResponse](ctx, c.Session, "LOGINLIST", 0, req)
}

// LoadChannelListRequest is the LCHATLIST request record.
type LoadChannelListRequest struct {
	ChatIDs    []int64 `bson:"chatIds"`
	MaxIDs     []int64 `bson:"maxIds,omitempty"`
}

// ChannelListData describes one channel summary row, as returned inside a
// LCHATLIST response.
type ChannelListData struct {
	ChatID       int64 `bson:"chatId"`
	LastLogID    int64 `bson:"lastLogId"`
	LastChatLog  any   `bson:"lastChat,omitempty"`
	UnreadCount  int32 `bson:"unreadCount"`
}

// LoadChannelListResponse is the LCHATLIST response record.
type LoadChannelListResponse struct {
	ChatDatas []ChannelListData `bson:"chatDatas"`
}

// LoadChannelList issues LCHATLIST, fetching channel summaries for the given
// channel ids.
func (c *Client) LoadChannelList(ctx context.Context, req LoadChannelListRequest) (LoadChannelListResponse, error) {
	return facade.Call[LoadChannelListRequest, LoadChannelListResponse](ctx, c.Session, "LCHATLIST", 0, req)
}

// SetStatusRequest is the SETST request record.
type SetStatusRequest struct {
	Status int32 `bson:"status"`
}

// SetStatusResponse is the SETST response record.
type SetStatusResponse struct {
	Status int32 `bson:"status"`
}

// SetStatus issues SETST, updating the account's presence status.
func (c *Client) SetStatus(ctx context.Context, req SetStatusRequest) (SetStatusResponse, error) {
	return facade.Call[SetStatusRequest, SetStatusResponse](ctx, c.Session, "SETST", 0, req)
}

// ChannelInfoRequest is the CHATINFO request record.
type ChannelInfoRequest struct {
	ChatID int64 `bson:"chatId"`
}

// ChannelInfoResponse is the CHATINFO response record.
type ChannelInfoResponse struct {
	Status  int32 `bson:"status"`
	ChatID  int64 `bson:"chatId"`
	Members []int64 `bson:"members,omitempty"`
}

// ChannelInfo issues CHATINFO, fetching metadata for a single channel.
func (c *Client) ChannelInfo(ctx context.Context, req ChannelInfoRequest) (ChannelInfoResponse, error) {
	return facade.Call[ChannelInfoRequest, ChannelInfoResponse](ctx, c.Session, "CHATINFO", 0, req)
}

// ChatOnChannelRequest is the CHATONROOM request record: announces presence
// in a channel so the server starts delivering its broadcasts.
type ChatOnChannelRequest struct {
	ChatID int64 `bson:"chatId"`
}

// ChatOnChannelResponse is the CHATONROOM response record.
type ChatOnChannelResponse struct {
	Status  int32 `bson:"status"`
	ChatID  int64 `bson:"chatId"`
}

// ChatOnChannel issues CHATONROOM.
func (c *Client) ChatOnChannel(ctx context.Context, req ChatOnChannelRequest) (ChatOnChannelResponse, error) {
	return facade.Call[ChatOnChannelRequest, ChatOnChannelResponse](ctx, c.Session, "CHATONROOM", 0, req)
}

// WriteRequest is the WRITE request record: sends a chat message.
type WriteRequest struct {
	ChatID  int64  `bson:"chatId"`
	Type    int32  `bson:"type"`
	Message string `bson:"msg"`
}

// WriteResponse is the WRITE response record.
type WriteResponse struct {
	Status int32 `bson:"status"`
	LogID  int64 `bson:"logId"`
}

// Write issues WRITE, sending a chat message to a channel.
func (c *Client) Write(ctx context.Context, req WriteRequest) (WriteResponse, error) {
	return facade.Call[WriteRequest, WriteResponse](ctx, c.Session, "WRITE", 0, req)
}

// ForwardRequest is the FORWARD request record: forwards an existing message
// to another channel.
type ForwardRequest struct {
	ChatID  int64 `bson:"chatId"`
	OrigLogID int64 `bson:"origLogId"`
}

// ForwardResponse is the FORWARD response record.
type ForwardResponse struct {
	Status int32 `bson:"status"`
	LogID  int64 `bson:"logId"`
}

// Forward issues FORWARD.
func (c *Client) Forward(ctx context.Context, req ForwardRequest) (ForwardResponse, error) {
	return facade.Call[ForwardRequest, ForwardResponse](ctx, c.Session, "FORWARD", 0, req)
}

// DeleteChatRequest is the DELETEMSG request record.
type DeleteChatRequest struct {
	ChatID int64 `bson:"chatId"`
	LogID  int64 `bson:"logId"`
}

// DeleteChatResponse is the DELETEMSG response record.
type DeleteChatResponse struct {
	Status int32 `bson:"status"`
}

// DeleteChat issues DELETEMSG, deleting a previously sent message.
func (c *Client) DeleteChat(ctx context.Context, req DeleteChatRequest) (DeleteChatResponse, error) {
	return facade.Call[DeleteChatRequest, DeleteChatResponse](ctx, c.Session, "DELETEMSG", 0, req)
}

// LeaveRequest is the LEAVE request record.
type LeaveRequest struct {
	ChatID int64 `bson:"chatId"`
	Block  bool  `bson:"block,omitempty"`
}

// LeaveResponse is the LEAVE response record.
type LeaveResponse struct {
	Status int32 `bson:"status"`
}

// Leave issues LEAVE, leaving a channel.
func (c *Client) Leave(ctx context.Context, req LeaveRequest) (LeaveResponse, error) {
	return facade.Call[LeaveRequest, LeaveResponse](ctx, c.Session, "LEAVE", 0, req)
}

// ReadChatRequest is the NOTIREAD request record: acknowledges a message as
// read.
type ReadChatRequest struct {
	ChatID int64 `bson:"chatId"`
	LogID  int64 `bson:"logId"`
}

// ReadChatResponse is the NOTIREAD response record.
type ReadChatResponse struct {
	Status int32 `bson:"status"`
}

// ReadChat issues NOTIREAD.
func (c *Client) ReadChat(ctx context.Context, req ReadChatRequest) (ReadChatResponse, error) {
	return facade.Call[ReadChatRequest, ReadChatResponse](ctx, c.Session, "NOTIREAD", 0, req)
}

// SetMetaRequest is the SETMETA request record: updates a channel's meta
// (title, notice, ...).
type SetMetaRequest struct {
	ChatID  int64  `bson:"chatId"`
	Type    int32  `bson:"type"`
	Content string `bson:"content"`
}

// SetMetaResponse is the SETMETA response record.
type SetMetaResponse struct {
	Status int32 `bson:"status"`
}

// SetMeta issues SETMETA.
func (c *Client) SetMeta(ctx context.Context, req SetMetaRequest) (SetMetaResponse, error) {
	return facade.Call[SetMetaRequest, SetMetaResponse](ctx, c.Session, "SETMETA", 0, req)
}

// SyncChatRequest is the SYNCMSG request record: catches up on messages
// since a known log id.
type SyncChatRequest struct {
	ChatID   int64 `bson:"chatId"`
	SinceLog int64 `bson:"since"`
}

// SyncChatResponse is the SYNCMSG response record.
type SyncChatResponse struct {
	Status int32  `bson:"status"`
	Chats  []any  `bson:"chatLogs,omitempty"`
}

// SyncChat issues SYNCMSG.
func (c *Client) SyncChat(ctx context.Context, req SyncChatRequest) (SyncChatResponse, error) {
	return facade.Call[SyncChatRequest, SyncChatResponse](ctx, c.Session, "SYNCMSG", 0, req)
}

// ChannelUsersRequest is the GETMEM request record.
type ChannelUsersRequest struct {
	ChatID  int64   `bson:"chatId"`
	UserIDs []int64 `bson:"memberIds,omitempty"`
}

// ChannelUsersResponse is the GETMEM response record.
type ChannelUsersResponse struct {
	Status  int32 `bson:"status"`
	Members []any `bson:"members"`
}

// ChannelUsers issues GETMEM, fetching a channel's member list.
func (c *Client) ChannelUsers(ctx context.Context, req ChannelUsersRequest) (ChannelUsersResponse, error) {
	return facade.Call[ChannelUsersRequest, ChannelUsersResponse](ctx, c.Session, "GETMEM", 0, req)
}

// UserInfoRequest is the MEMBER request record.
type UserInfoRequest struct {
	UserID int64 `bson:"userId"`
}

// UserInfoResponse is the MEMBER response record.
type UserInfoResponse struct {
	Status   int32  `bson:"status"`
	UserID   int64  `bson:"userId"`
	Nickname string `bson:"nickName"`
}

// UserInfo issues MEMBER, fetching a single user's profile.
func (c *Client) UserInfo(ctx context.Context, req UserInfoRequest) (UserInfoResponse, error) {
	return facade.Call[UserInfoRequest, UserInfoResponse](ctx, c.Session, "MEMBER", 0, req)
}

// UpdateChannelRequest is the UPDATECHAT request record.
type UpdateChannelRequest struct {
	ChatID int64 `bson:"chatId"`
}

// UpdateChannelResponse is the UPDATECHAT response record.
type UpdateChannelResponse struct {
	Status int32 `bson:"status"`
}

// UpdateChannel issues UPDATECHAT.
func (c *Client) UpdateChannel(ctx context.Context, req UpdateChannelRequest) (UpdateChannelResponse, error) {
	return facade.Call[UpdateChannelRequest, UpdateChannelResponse](ctx, c.Session, "UPDATECHAT", 0, req)
}

// GetTrailerRequest is the GETTRAILER request record: fetches the media
// (attachment) CDN host to use for uploads/downloads.
type GetTrailerRequest struct {
	ChatID int64 `bson:"chatId"`
}

// GetTrailerResponse is the GETTRAILER response record. Field tags mirror
// the original wire names exactly (h/p/vh/vh6), which are abbreviated on
// the wire rather than distillation artifacts.
type GetTrailerResponse struct {
	Host   string `bson:"h"`
	Port   int32  `bson:"p"`
	VHost  string `bson:"vh"`
	VHost6 int32  `bson:"vh6"`
}

// GetTrailer issues GETTRAILER.
func (c *Client) GetTrailer(ctx context.Context, req GetTrailerRequest) (GetTrailerResponse, error) {
	return facade.Call[GetTrailerRequest, GetTrailerResponse](ctx, c.Session, "GETTRAILER", 0, req)
}
