package configserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/shardrun/shardrun/srcs/go/log"
)

// Client talks to a running config server.
type Client struct {
	endpoint string
	client   http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{endpoint: endpoint}
}

func (cc *Client) url(path string) (string, error) {
	u, err := url.Parse(cc.endpoint)
	if err != nil {
		return "", err
	}
	if len(u.Scheme) == 0 {
		u, err = url.Parse(`http://` + cc.endpoint)
		if err != nil {
			return "", err
		}
	}
	u.Path = path
	return u.String(), nil
}

func (cc *Client) Get() (*Config, error) {
	u, err := cc.url(Endpoint)
	if err != nil {
		return nil, err
	}
	resp, err := cc.client.Get(u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(resp.Status)
	}
	var config Config
	if err := json.NewDecoder(resp.Body).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func (cc *Client) Update(config Config) error {
	u, err := cc.url(Endpoint)
	if err != nil {
		return err
	}
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(config); err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPut, u, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := cc.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New(resp.Status)
	}
	return nil
}

func (cc *Client) Delete() error {
	u, err := cc.url(Endpoint)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	resp, err := cc.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// WaitServer blocks until the server answers pings.
func (cc *Client) WaitServer() error {
	u, err := cc.url(`/ping`)
	if err != nil {
		return err
	}
	for {
		resp, err := cc.client.Get(u)
		if err == nil {
			resp.Body.Close()
			return nil
		}
		log.Warnf("server is not ready: %v", err)
		time.Sleep(2 * time.Second)
	}
}

func (cc *Client) StopServer() error {
	u, err := cc.url(`/stop`)
	if err != nil {
		return err
	}
	resp, err := cc.client.Get(u)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
