package safe_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskscope/pkg/utils/safe"
)

type closer struct {
	called bool
	err    error
}

func (c *closer) Close() error {
	c.called = true
	return c.err
}

func TestClose(t *testing.T) {
	ctx := context.Background()

	c := &closer{}
	safe.Close(ctx, c)
	gt.B(t, c.called).True()

	failing := &closer{err: errors.New("boom")}
	safe.Close(ctx, failing)
	gt.B(t, failing.called).True()

	safe.Close(ctx, nil)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	safe.Write(context.Background(), &buf, []byte("ok"))
	gt.S(t, buf.String()).Equal("ok")

	safe.Write(context.Background(), nil, []byte("ignored"))
}
