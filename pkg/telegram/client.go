// Package telegram is a user-account MTProto client built on gotd/td. It
// implements messenger.Client.
package telegram

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/peers"
	"github.com/gotd/td/telegram/updates"
	"github.com/gotd/td/tg"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/messenger"
	"github.com/sells-group/leadscout/internal/model"
)

// Config configures a Client.
type Config struct {
	AppID       int
	AppHash     string
	SessionFile string

	// Buffer is the capacity of the live message channel.
	Buffer int
}

// Client implements messenger.Client.
type Client struct {
	cfg        Config
	log        *zap.Logger
	client     *telegram.Client
	dispatcher tg.UpdateDispatcher
	gaps       *updates.Manager

	mu       sync.Mutex
	api      *tg.Client
	peers    *peers.Manager
	runCtx   context.Context
	cancel   context.CancelFunc
	done     chan error
	sub      *subscription
	tracking bool
}

type subscription struct {
	ids  map[string]struct{}
	out  chan model.RawMessage
	done chan struct{}

	mu      sync.Mutex
	closed  bool
	sending sync.WaitGroup
}

// send delivers msg unless the subscription is closed first.
func (s *subscription) send(ctx context.Context, msg model.RawMessage) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.sending.Add(1)
	s.mu.Unlock()
	defer s.sending.Done()

	select {
	case s.out <- msg:
	case <-s.done:
	case <-ctx.Done():
	}
}

func (s *subscription) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	s.sending.Wait()
	close(s.out)
}

var _ messenger.Client = (*Client)(nil)

// New creates a disconnected client. The session is persisted to
// cfg.SessionFile so later runs skip the login code.
func New(cfg Config, log *zap.Logger) *Client {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 64
	}
	c := &Client{cfg: cfg, log: log}
	// Updates flow through gap recovery, then short-form expansion, then
	// the dispatcher.
	c.gaps = updates.New(updates.Config{
		Handler: c.handlers(),
		Logger:  log.Named("updates"),
	})
	c.client = telegram.NewClient(cfg.AppID, cfg.AppHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: cfg.SessionFile},
		UpdateHandler:  c.gaps,
		Logger:         log.Named("mtproto"),
	})
	return c
}

// handlers builds the dispatcher that feeds deliver and returns the handler
// chain in front of it.
func (c *Client) handlers() telegram.UpdateHandler {
	c.dispatcher = tg.NewUpdateDispatcher()
	c.dispatcher.OnNewChannelMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewChannelMessage) error {
		c.deliver(ctx, e, u.Message)
		return nil
	})
	c.dispatcher.OnNewMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewMessage) error {
		c.deliver(ctx, e, u.Message)
		return nil
	})
	return shortUpdates{next: c.dispatcher, log: c.log}
}

// Connect opens the connection and keeps it running in the background until
// Disconnect.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return eris.New("telegram: already connected")
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan error, 1)
	c.runCtx = runCtx
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	ready := make(chan struct{})
	go func() {
		done <- c.client.Run(runCtx, func(ctx context.Context) error {
			api := c.client.API()
			c.mu.Lock()
			c.api = api
			c.peers = peers.Options{Logger: c.log.Named("peers")}.Build(api)
			c.mu.Unlock()
			close(ready)
			<-ctx.Done()
			return nil
		})
	}()

	select {
	case <-ready:
		c.log.Info("connected to telegram")
		return nil
	case err := <-done:
		c.reset()
		return eris.Wrap(err, "telegram: connect")
	case <-ctx.Done():
		cancel()
		<-done
		c.reset()
		return eris.Wrap(ctx.Err(), "telegram: connect")
	}
}

// Authenticate signs in unless the stored session is still valid.
func (c *Client) Authenticate(ctx context.Context, phone string, code messenger.CodeFunc, password messenger.PasswordFunc) error {
	if err := c.ready(); err != nil {
		return err
	}
	flow := auth.NewFlow(authenticator{phone: phone, code: code, password: password}, auth.SendCodeOptions{})
	if err := c.client.Auth().IfNecessary(ctx, flow); err != nil {
		return eris.Wrap(err, "telegram: authenticate")
	}

	self, err := c.client.Self(ctx)
	if err != nil {
		return eris.Wrap(err, "telegram: get self")
	}
	c.log.Info("authenticated", zap.Int64("user_id", self.ID), zap.String("username", self.Username))
	c.trackUpdates(self)
	return nil
}

// trackUpdates starts gap recovery for the signed-in account. It runs until
// Disconnect.
func (c *Client) trackUpdates(self *tg.User) {
	c.mu.Lock()
	if c.tracking || c.runCtx == nil || c.api == nil {
		c.mu.Unlock()
		return
	}
	c.tracking = true
	ctx, api := c.runCtx, c.api
	c.mu.Unlock()

	c.log.Info("starting update recovery")
	go func() {
		err := c.gaps.Run(ctx, api, self.ID, updates.AuthOptions{IsBot: self.Bot})
		if err != nil && !errors.Is(err, context.Canceled) {
			c.log.Error("update recovery stopped, live messages may be missed", zap.Error(err))
		}
	}()
}

// Join joins a public channel or supergroup by username or t.me link.
func (c *Client) Join(ctx context.Context, source string) error {
	p, err := c.resolve(ctx, source)
	if err != nil {
		return err
	}
	ch, ok := p.(peers.Channel)
	if !ok {
		return eris.Errorf("telegram: %s is not a channel or supergroup", source)
	}
	if err := ch.Join(ctx); err != nil {
		return mapError(err)
	}
	return nil
}

// FetchHistory returns up to limit recent messages, newest first.
func (c *Client) FetchHistory(ctx context.Context, source string, limit int) ([]model.RawMessage, error) {
	p, err := c.resolve(ctx, source)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	api := c.api
	c.mu.Unlock()
	if api == nil {
		return nil, eris.New("telegram: not connected")
	}
	res, err := api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  p.InputPeer(),
		Limit: limit,
	})
	if err != nil {
		return nil, eris.Wrapf(mapError(err), "telegram: history of %s", source)
	}

	src := sourceOfPeer(p)
	var out []model.RawMessage
	for _, m := range messagesOf(res) {
		if msg, ok := convertMessage(m, src); ok {
			out = append(out, msg)
		}
	}
	return out, nil
}

// Subscribe delivers new messages from sources, or from every chat when
// sources is empty. Only one subscription is active at a time.
func (c *Client) Subscribe(ctx context.Context, sources []string) (<-chan model.RawMessage, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	var ids map[string]struct{}
	if len(sources) > 0 {
		ids = make(map[string]struct{}, len(sources))
		for _, s := range sources {
			p, err := c.resolve(ctx, s)
			if err != nil {
				c.log.Warn("cannot resolve source, it will not be watched", zap.String("source", s), zap.Error(err))
				continue
			}
			ids[sourceOfPeer(p).ID] = struct{}{}
		}
		if len(ids) == 0 {
			return nil, eris.New("telegram: none of the sources could be resolved")
		}
	}

	out := make(chan model.RawMessage, c.cfg.Buffer)
	sub := &subscription{ids: ids, out: out, done: make(chan struct{})}

	c.mu.Lock()
	if c.sub != nil {
		c.mu.Unlock()
		return nil, eris.New("telegram: already subscribed")
	}
	c.sub = sub
	c.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			c.closeSubscription(sub)
		case <-sub.done:
		}
	}()
	return out, nil
}

// Disconnect stops the background connection and closes any live stream.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	cancel, done, sub := c.cancel, c.done, c.sub
	c.mu.Unlock()
	if cancel == nil {
		return nil
	}
	if sub != nil {
		c.closeSubscription(sub)
	}

	cancel()
	defer c.reset()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return eris.Wrap(err, "telegram: disconnect")
		}
		c.log.Info("disconnected from telegram")
		return nil
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "telegram: disconnect")
	}
}

func (c *Client) deliver(ctx context.Context, e tg.Entities, m tg.MessageClass) {
	msg, ok := m.(*tg.Message)
	if !ok || msg.Out {
		return
	}
	src := sourceOf(msg.PeerID, e)
	raw, ok := convertMessage(msg, src)
	if !ok {
		return
	}

	c.mu.Lock()
	sub := c.sub
	c.mu.Unlock()
	if sub == nil {
		return
	}
	if sub.ids != nil {
		if _, watched := sub.ids[src.ID]; !watched {
			return
		}
	}

	// Blocks the update loop while the pipeline is busy, so a slow oracle
	// applies back-pressure instead of dropping messages.
	sub.send(ctx, raw)
}

func (c *Client) closeSubscription(sub *subscription) {
	c.mu.Lock()
	if c.sub == sub {
		c.sub = nil
	}
	c.mu.Unlock()
	sub.close()
}

func (c *Client) resolve(ctx context.Context, source string) (peers.Peer, error) {
	c.mu.Lock()
	manager := c.peers
	c.mu.Unlock()
	if manager == nil {
		return nil, eris.New("telegram: not connected")
	}
	name := NormalizeSource(source)
	if name == "" {
		return nil, eris.New("telegram: empty source")
	}
	p, err := manager.Resolve(ctx, name)
	if err != nil {
		return nil, eris.Wrapf(mapError(err), "telegram: resolve %s", source)
	}
	return p, nil
}

func (c *Client) ready() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.api == nil {
		return eris.New("telegram: not connected")
	}
	return nil
}

func (c *Client) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runCtx = nil
	c.cancel = nil
	c.done = nil
	c.api = nil
	c.peers = nil
	c.tracking = false
}

// sourceOfPeer builds the same source identity live updates carry.
func sourceOfPeer(p peers.Peer) model.Source {
	src := model.Source{DisplayName: p.VisibleName()}
	if u, ok := p.Username(); ok {
		src.Username = u
	}
	switch v := p.(type) {
	case peers.Channel:
		src.ID = channelSourceID(v.ID())
	case peers.Chat:
		src.ID = chatSourceID(v.ID())
	default:
		src.ID = strconv.FormatInt(p.ID(), 10)
	}
	return src
}
