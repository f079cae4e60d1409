package client

import (
	"context"
	"sync"
	"time"

	"github.com/sachiny0106/LinkUp/models"
)

// DefaultPollInterval is how often the poller refreshes the feed when no
// interval is given.
const DefaultPollInterval = 15 * time.Second

// Poller periodically refetches posts and hands them to a callback, keeping
// any registered EngagementStates reconciled along the way. It is the pull
// half of keeping many viewers roughly in sync without a push channel.
type Poller struct {
	client   *Client
	interval time.Duration
	onPosts  func([]models.Post)
	onError  func(error)

	mu      sync.Mutex
	states  map[string]*EngagementState
	started bool

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval overrides the default poll interval.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithOnPosts registers a callback invoked with each fetched feed.
func WithOnPosts(fn func([]models.Post)) PollerOption {
	return func(p *Poller) { p.onPosts = fn }
}

// WithOnError registers a callback for poll failures. Failures never stop
// the poller; the next tick tries again.
func WithOnError(fn func(error)) PollerOption {
	return func(p *Poller) { p.onError = fn }
}

// NewPoller builds a poller around c. Call Start to begin polling.
func NewPoller(c *Client, opts ...PollerOption) *Poller {
	p := &Poller{
		client:   c,
		interval: DefaultPollInterval,
		states:   make(map[string]*EngagementState),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Track registers an engagement state to be reconciled on every poll.
func (p *Poller) Track(state *EngagementState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states[state.postID] = state
}

// Untrack stops reconciling the given post.
func (p *Poller) Untrack(postID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.states, postID)
}

// Start launches the poll loop in a goroutine. The loop runs until Stop is
// called or ctx is cancelled. The first fetch happens immediately rather
// than one interval in.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	p.started = true
	p.mu.Unlock()

	go func() {
		defer close(p.done)

		p.poll(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stop:
				return
			case <-ticker.C:
				p.poll(ctx)
			}
		}
	}()
}

// Stop halts the poll loop and waits for it to exit. Safe to call more
// than once, and a no-op if the poller was never started.
func (p *Poller) Stop() {
	p.once.Do(func() { close(p.stop) })

	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return
	}
	<-p.done
}

func (p *Poller) poll(ctx context.Context) {
	posts, err := p.client.ListPosts(ctx, "", 0)
	if err != nil {
		if p.onError != nil {
			p.onError(err)
		}
		return
	}

	p.mu.Lock()
	for i := range posts {
		if state, ok := p.states[posts[i].PostID]; ok {
			state.Reconcile(&posts[i])
		}
	}
	p.mu.Unlock()

	if p.onPosts != nil {
		p.onPosts(posts)
	}
}
