package store

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"
)

// ErrNoSession is returned when a broker has no stored session, or the
// stored one has expired. The caller should prompt for a fresh interactive
// login.
var ErrNoSession = errors.New("no valid session")

// SaveSession stores a broker's captured session headers until expires.
func (s *Store) SaveSession(broker string, headers http.Header, expires time.Time) error {
	var b strings.Builder
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		for _, v := range headers[k] {
			fmt.Fprintf(&b, "%s: %s\n", k, v)
		}
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO sessions
		(broker, headers, expires_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		broker, b.String(), expires.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("cannot save %s session: %w", broker, err)
	}
	return nil
}

// Session returns the stored session headers for a broker. An expired
// session is cleared and reported as ErrNoSession.
func (s *Store) Session(broker string) (http.Header, error) {
	var raw, expiresAt string
	err := s.db.QueryRow(`SELECT headers, expires_at FROM sessions WHERE broker = ?`, broker).
		Scan(&raw, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s session: %w", broker, err)
	}

	expires, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s session expiry: %w", broker, err)
	}
	if time.Now().After(expires) {
		if err := s.ClearSession(broker); err != nil {
			return nil, err
		}
		return nil, ErrNoSession
	}
	return ParseHeaders(raw), nil
}

// ClearSession removes a broker's stored session.
func (s *Store) ClearSession(broker string) error {
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE broker = ?`, broker); err != nil {
		return fmt.Errorf("cannot clear %s session: %w", broker, err)
	}
	return nil
}

// ParseHeaders reads "Key: Value" lines, one header per line, the format
// browser devtools copy and the session import command consumes. Lines
// without a colon are ignored.
func ParseHeaders(text string) http.Header {
	headers := make(http.Header)
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), ":", 2)
		if len(parts) == 2 {
			headers.Add(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
		}
	}
	return headers
}
