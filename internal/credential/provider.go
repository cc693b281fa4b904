package credential

import (
	"errors"
	"time"

	"golang.org/x/oauth2"

	"taskboard/internal/config"
)

// Kind names the store a token came from.
type Kind string

const (
	Remembered Kind = "remembered"
	Session    Kind = "session"
)

// Provider selects between the persistent and the session store.
type Provider struct {
	Persistent Store
	Session    Store

	// now is stubbed in tests.
	now func() time.Time
}

// NewProvider returns a Provider over the credential files of cfg.
func NewProvider(cfg *config.Config) *Provider {
	return &Provider{
		Persistent: FileStore{Path: cfg.TokenPath()},
		Session:    FileStore{Path: cfg.SessionPath()},
	}
}

// Token implements oauth2.TokenSource.
// The persistent store wins over the session store.
func (p *Provider) Token() (*oauth2.Token, error) {
	tok, _, err := p.Current()
	return tok, err
}

// Current returns the token together with the store it came from.
func (p *Provider) Current() (*oauth2.Token, Kind, error) {
	for _, s := range []struct {
		store Store
		kind  Kind
	}{
		{p.Persistent, Remembered},
		{p.Session, Session},
	} {
		if s.store == nil {
			continue
		}
		tok, err := s.store.Load()
		if errors.Is(err, ErrNotSignedIn) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		if expired(tok, p.clock()) {
			return tok, s.kind, ErrExpired
		}
		return tok, s.kind, nil
	}
	return nil, "", ErrNotSignedIn
}

// Save stores tok in the persistent store when remember is set, otherwise
// in the session store. The other store is cleared so a stale token can't
// shadow the new one.
func (p *Provider) Save(tok *oauth2.Token, remember bool) error {
	target, other := p.Session, p.Persistent
	if remember {
		target, other = p.Persistent, p.Session
	}
	if err := target.Save(tok); err != nil {
		return err
	}
	return other.Clear()
}

// Clear removes the token from both stores.
func (p *Provider) Clear() error {
	return errors.Join(p.Persistent.Clear(), p.Session.Clear())
}

func (p *Provider) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}

// expired ignores oauth2's expiry delta; a token is usable until its exp.
func expired(tok *oauth2.Token, now time.Time) bool {
	return !tok.Expiry.IsZero() && !now.Before(tok.Expiry)
}

var _ oauth2.TokenSource = (*Provider)(nil)
