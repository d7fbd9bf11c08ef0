package converter

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/parking-aggregator/internal/domain"
)

// stubOpener отдает фиды из памяти по адресу
type stubOpener struct {
	feeds map[string]string
	calls []string
}

func newStubOpener(feeds map[string]string) *stubOpener {
	return &stubOpener{feeds: feeds}
}

func (o *stubOpener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	o.calls = append(o.calls, location)
	body, ok := o.feeds[location]
	if !ok {
		return nil, fmt.Errorf("feed %s unavailable", location)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testInfo(uid string) domain.SourceInfo {
	return domain.SourceInfo{UID: uid, Name: "Test source " + uid}
}
