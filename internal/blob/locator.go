package blob

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseLocator resolves an image locator to a bucket and object key. Two
// forms are accepted:
//
//	s3://bucket/path/to/object.jpg
//	https://bucket.s3.region.example.com/path/to/object.jpg
//
// Anything else is an unrecognized locator.
func ParseLocator(locator string) (bucket, key string, err error) {
	if strings.HasPrefix(locator, "s3://") {
		rest := strings.TrimPrefix(locator, "s3://")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return "", "", fmt.Errorf("invalid s3 locator: %s", locator)
		}
		return parts[0], parts[1], nil
	}

	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		parsed, err := url.Parse(locator)
		if err != nil {
			return "", "", fmt.Errorf("invalid locator url: %w", err)
		}

		host := parsed.Hostname()
		// Virtual-hosted style: the bucket is the first host label before
		// the "s3" endpoint label.
		labels := strings.Split(host, ".")
		if len(labels) < 2 || !strings.HasPrefix(labels[1], "s3") {
			return "", "", fmt.Errorf("unrecognized object storage host: %s", host)
		}

		key := strings.TrimPrefix(parsed.Path, "/")
		if labels[0] == "" || key == "" {
			return "", "", fmt.Errorf("invalid locator url: %s", locator)
		}
		return labels[0], key, nil
	}

	return "", "", fmt.Errorf("unrecognized locator scheme: %s", locator)
}
