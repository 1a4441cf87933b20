package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveAction(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		form    map[string]string
		want    Action
		wantErr bool
	}{
		{"form action", "", map[string]string{"Action": "CreateQueue"}, ActionCreateQueue, false},
		{"form action lowercase", "", map[string]string{"Action": "listqueues"}, ActionListQueues, false},
		{"form action with prefix", "", map[string]string{"Action": "AmazonSQS.SendMessage"}, ActionSendMessage, false},
		{"header wins over form", "AmazonSQS.ReceiveMessage", map[string]string{"Action": "CreateQueue"}, ActionReceiveMessage, false},
		{"header mixed case", "amazonsqs.RECEIVEMESSAGE", nil, ActionReceiveMessage, false},
		{"header without prefix", "SendMessage", nil, ActionSendMessage, false},
		{"unknown action", "", map[string]string{"Action": "DeleteQueue"}, "", true},
		{"unknown header", "AmazonSQS.PurgeQueue", map[string]string{"Action": "CreateQueue"}, "", true},
		{"missing action", "", map[string]string{}, "", true},
		{"prefix only", "AmazonSQS.", nil, "", true},
		{"nested prefix", "Bogus.Service.ReceiveMessage", nil, "", true},
		{"nested prefix in form", "", map[string]string{"Action": "AmazonSQS.v2.SendMessage"}, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveAction(tc.target, tc.form)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnknownAction)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
