// Package pushsvc delivers push notifications through the hosted push
// endpoint: a fire-and-forget HTTP POST per message.
package pushsvc

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/trezcool/darasa/core"
)

type service struct {
	endpoint string
	client   *http.Client
	logger   core.Logger
}

var _ core.PushService = (*service)(nil)

func NewService(conf *core.Config, logger core.Logger) core.PushService {
	return &service{
		endpoint: conf.PushEndpoint,
		client:   &http.Client{Timeout: conf.PushTimeout},
		logger:   logger,
	}
}

func (svc *service) SendMessages(messages ...core.PushMessage) {
	for _, msg := range messages {
		msg := msg
		go func() {
			if msg.To == "" {
				return
			}
			svc.send(msg)
		}()
	}
}

func (svc *service) send(msg core.PushMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		svc.logger.Error("encoding push message", err)
		return
	}

	res, err := svc.client.Post(svc.endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		svc.logger.Error("posting push message", err)
		return
	}
	defer res.Body.Close()

	// no delivery handling; log the response body and move on
	body, _ := ioutil.ReadAll(res.Body)
	svc.logger.Debug("push endpoint response: " + string(body))
}

// mock service: sends synchronously and records messages for assertions

type serviceMock struct {
	Sent []core.PushMessage
}

func NewServiceMock() *serviceMock {
	return &serviceMock{}
}

func (svc *serviceMock) SendMessages(messages ...core.PushMessage) {
	svc.Sent = append(svc.Sent, messages...)
}
