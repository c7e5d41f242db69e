package player

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ytget/ytcipher/internal/logger"
)

// testScript decodes "ABCDEF" to "ACBD".
const testScript = `var _yt_player={};(function(g){var window=this;
var Xy={Rk:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b%a.length]=c},
$q:function(a){a.reverse()},
ab:function(a,b){return a.slice(b)},
zZ:function(a,b){a.splice(0,b)}};
Bz=function(a){a=a.split("");Xy.Rk(a,3);Xy.$q(a,45);a=Xy.ab(a,2);return a.join("")};
})(_yt_player);`

// emptyScript has both blocks but the decipher function never calls the
// helper object.
const emptyScript = `var Xy={$q:function(a){a.reverse()}};
function(a){a=a.split("");Zz.$q(a,1);return a.join("")}`

const testIdentity = "/s/player/0f1e2d3c/player_ias.vflset/en_US/base.js"

// fakeFetcher serves fixed responses and counts calls.
type fakeFetcher struct {
	mu     sync.Mutex
	status int
	body   string
	err    error
	delay  time.Duration
	urls   []string

	calls    atomic.Int32
	inflight atomic.Int32
	maxSeen  atomic.Int32

	// arrive, when set, is signalled on every call and the call waits for
	// release before answering
	arrive  chan struct{}
	release chan struct{}
}

func newFakeFetcher(body string) *fakeFetcher {
	return &fakeFetcher{status: http.StatusOK, body: body}
}

func (f *fakeFetcher) Get(ctx context.Context, url string) (*http.Response, error) {
	f.calls.Add(1)
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.urls = append(f.urls, url)
	status, body, err, delay := f.status, f.body, f.err, f.delay
	f.mu.Unlock()

	if f.arrive != nil {
		f.arrive <- struct{}{}
		select {
		case <-f.release:
		case <-time.After(5 * time.Second):
			return nil, errors.New("fake fetcher was never released")
		}
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}, nil
}

func (f *fakeFetcher) set(status int, body string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.body, f.err = status, body, err
}

func (f *fakeFetcher) lastURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.urls) == 0 {
		return ""
	}
	return f.urls[len(f.urls)-1]
}

// bufferLogger returns a player logger writing text lines to buf.
func bufferLogger(buf *bytes.Buffer) *logger.ComponentLogger {
	l := logger.New(&logger.Config{
		Level:      logger.DEBUG,
		Format:     logger.FormatText,
		Output:     buf,
		Components: map[logger.Component]bool{logger.ComponentPlayer: true},
	})
	return l.WithComponent(logger.ComponentPlayer)
}
