package ipc

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"resty.dev/v3"
)

func newClient() *resty.Client {
	path := SocketPath()

	client := resty.NewWithClient(&http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", path)
			},
		},
	})

	client.SetBaseURL("http://shmpaper")
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "shmpaper")
	return client
}

// SendStatus asks the running instance for its status. An error means
// nothing is listening.
func SendStatus() (*StatusResponse, error) {
	client := newClient()

	result := StatusResponse{}
	response, err := client.R().SetResult(&result).Get("/status")
	if err != nil {
		return nil, err
	}
	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("error requesting status: %s", response.Status())
	}
	return &result, nil
}

// SendStop asks the running instance to exit.
func SendStop() error {
	client := newClient()

	result := Response{}
	response, err := client.R().SetResult(&result).Post("/stop")
	if err != nil {
		return err
	}
	if response.StatusCode() != http.StatusOK {
		return fmt.Errorf("error sending stop: %s %s", response.Status(), result.Message)
	}
	return nil
}
