package folio

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// http utils shared by the broker fetchers.

// GetPage performs an HTTP GET with the captured session headers and returns
// the response body. Broker portals serve their positions pages only to a
// logged-in session, so the headers must come from an interactive login.
func GetPage(client *http.Client, addr string, headers http.Header) (string, error) {
	req, err := http.NewRequest(http.MethodGet, addr, nil)
	if err != nil {
		return "", fmt.Errorf("cannot create http request %q: %w", addr, err)
	}
	if headers != nil {
		req.Header = headers.Clone()
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("cannot execute http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cannot http GET %v/%v: %v",
			resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return "", fmt.Errorf("cannot read receiving http body: %w", err)
	}
	return buf.String(), nil
}
