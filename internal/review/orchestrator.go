package review

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/chainguard-dev/clog"

	"github.com/dshills/snapreview/internal/credential"
	"github.com/dshills/snapreview/internal/format"
	"github.com/dshills/snapreview/internal/redact"
)

// CredentialResolver supplies the credential for each request.
type CredentialResolver interface {
	Resolve(ctx context.Context) credential.Credential
}

// Formatter post-processes a successful review.
type Formatter interface {
	Apply(ctx context.Context, text, language string) format.Outcome
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFormatter sets the post-processing pipeline. Without one, results are
// published as returned by the client.
func WithFormatter(f Formatter) Option {
	return func(o *Orchestrator) { o.formatter = f }
}

// WithProvider sets the provider named in configuration errors.
func WithProvider(provider string) Option {
	return func(o *Orchestrator) { o.provider = provider }
}

// Orchestrator runs review requests and publishes their state.
//
// Every change is published as a complete snapshot. Each Submit starts a new
// generation; results from an older generation that finish late are
// discarded rather than overwriting a newer request.
type Orchestrator struct {
	client    Client
	creds     CredentialResolver
	formatter Formatter
	provider  string

	// delivery serialises publication so observers see snapshots in order.
	delivery sync.Mutex

	mu        sync.Mutex
	state     State
	gen       uint64
	observers map[int]func(State)
	nextID    int
}

// New creates an Orchestrator in the idle state.
func New(client Client, creds CredentialResolver, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:    client,
		creds:     creds,
		observers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current snapshot.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Subscribe registers fn to receive every published snapshot, in order.
// fn runs synchronously on the publishing goroutine and must not call
// Submit or Reset. The returned func removes the subscription.
func (o *Orchestrator) Subscribe(fn func(State)) (cancel func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.observers[id] = fn
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.observers, id)
			o.mu.Unlock()
		})
	}
}

// Reset abandons any in-flight request and returns to idle.
func (o *Orchestrator) Reset() {
	o.begin(func(s *State) { *s = State{} })
}

// Submit reviews req and returns the final snapshot. If a newer Submit or
// Reset supersedes this one before it finishes, its result is dropped and
// the then-current snapshot is returned.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (final State) {
	if strings.TrimSpace(req.Code) == "" {
		s, _ := o.begin(func(s *State) {
			*s = State{
				Status: StatusError,
				Error:  MessageEmptyCode,
				Kind:   KindValidation,
				Cause:  ErrEmptyCode,
			}
		})
		return s
	}

	_, gen := o.begin(func(s *State) { *s = State{Status: StatusLoading} })
	log := clog.FromContext(ctx).With("language", req.Language)

	var cred credential.Credential
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("review panicked: %v", r)
			final = o.fail(gen, cred, fmt.Errorf("review panicked: %v", r))
		}
	}()

	cred = o.creds.Resolve(ctx)
	if !cred.Configured() {
		s, _ := o.publish(gen, func(s *State) {
			*s = State{
				Status: StatusError,
				Error:  ConfigurationMessage(o.provider),
				Kind:   KindConfiguration,
				Cause:  ErrNotConfigured,
			}
		})
		return s
	}
	log = log.With("credential_source", cred.Source.String())

	text, err := o.client.Generate(ctx, req.Code, req.Language, cred)
	if err != nil {
		log.Warnf("review failed: %v", redact.Credential(err.Error(), cred.Value))
		return o.fail(gen, cred, err)
	}

	s, current := o.publish(gen, func(s *State) {
		*s = State{Status: StatusSuccess, Result: text}
	})
	if !current || o.formatter == nil {
		return s
	}

	outcome := o.format(ctx, text, req.Language)
	s, _ = o.publish(gen, func(s *State) {
		s.Result = outcome.Text
		s.FormattingStatus = outcome.Message
		s.Formatted = outcome.Applied
	})
	return s
}

// format runs the formatter, containing any panic so that a successful
// review stays successful.
func (o *Orchestrator) format(ctx context.Context, text, language string) (out format.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			clog.FromContext(ctx).Warnf("formatter panicked: %v", r)
			out = format.Outcome{Text: text, Message: "Formatting could not be applied, showing raw output."}
		}
	}()
	out = o.formatter.Apply(ctx, text, language)
	if out.Text == "" {
		out.Text = text
	}
	return out
}

func (o *Orchestrator) fail(gen uint64, cred credential.Credential, err error) State {
	msg := "Failed to get review: " + redact.Credential(err.Error(), cred.Value)
	s, _ := o.publish(gen, func(s *State) {
		*s = State{
			Status: StatusError,
			Error:  msg,
			Kind:   KindRemote,
			Cause:  &RemoteError{Message: msg, Err: err},
		}
	})
	return s
}

// begin starts a new generation and publishes its first snapshot.
func (o *Orchestrator) begin(fn func(*State)) (State, uint64) {
	o.delivery.Lock()
	defer o.delivery.Unlock()

	o.mu.Lock()
	o.gen++
	gen := o.gen
	fn(&o.state)
	s, observers := o.state, o.snapshotObservers()
	o.mu.Unlock()

	notify(observers, s)
	return s, gen
}

// publish applies fn if gen is still current. It returns the resulting
// snapshot, or the current one and false when gen has been superseded.
func (o *Orchestrator) publish(gen uint64, fn func(*State)) (State, bool) {
	o.delivery.Lock()
	defer o.delivery.Unlock()

	o.mu.Lock()
	if gen != o.gen {
		s := o.state
		o.mu.Unlock()
		return s, false
	}
	fn(&o.state)
	s, observers := o.state, o.snapshotObservers()
	o.mu.Unlock()

	notify(observers, s)
	return s, true
}

// snapshotObservers must be called with o.mu held.
func (o *Orchestrator) snapshotObservers() []func(State) {
	ids := make([]int, 0, len(o.observers))
	for id := range o.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(State), 0, len(ids))
	for _, id := range ids {
		out = append(out, o.observers[id])
	}
	return out
}

func notify(observers []func(State), s State) {
	for _, fn := range observers {
		fn(s)
	}
}
