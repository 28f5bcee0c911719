package worker

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWorkMessage(t *testing.T) {
	valid := `{
		"jobId": "3f2a6c1e-9a1b-4c3d-8e5f-0123456789ab",
		"imageUrls": ["s3://b/a.jpg", "s3://b/b.jpg"],
		"userId": "u-1",
		"metadata": {"source": "mobile"}
	}`

	t.Run("valid message", func(t *testing.T) {
		msg, err := parseWorkMessage(amqp.Delivery{Body: []byte(valid), DeliveryTag: 42})
		require.NoError(t, err)

		assert.Equal(t, "3f2a6c1e-9a1b-4c3d-8e5f-0123456789ab", msg.JobID)
		assert.Equal(t, []string{"s3://b/a.jpg", "s3://b/b.jpg"}, msg.ImageURLs)
		assert.Equal(t, "u-1", msg.UserID)
		assert.Equal(t, uint64(42), msg.DeliveryTag)
	})

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"jobId":`},
		{name: "job id not a uuid", body: `{"jobId": "nope", "imageUrls": ["s3://b/a.jpg"]}`},
		{name: "missing image urls", body: `{"jobId": "3f2a6c1e-9a1b-4c3d-8e5f-0123456789ab"}`},
		{name: "empty image urls", body: `{"jobId": "3f2a6c1e-9a1b-4c3d-8e5f-0123456789ab", "imageUrls": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseWorkMessage(amqp.Delivery{Body: []byte(tt.body)})
			require.Error(t, err)
		})
	}
}
