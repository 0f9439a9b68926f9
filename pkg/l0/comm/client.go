package comm

import (
	"context"

	"github.com/golang/glog"
)

// DefaultRetries is the default number of retries after the first attempt.
const DefaultRetries = 3

// Client provides register operations over a Link.
type Client struct {
	Link    *Link
	Retries int
}

// NewClient creates client and wraps the link.
func NewClient(link *Link) *Client {
	return &Client{Link: link, Retries: DefaultRetries}
}

// Run wraps Link.Run to implement Runnable.
func (c *Client) Run(ctx context.Context) error {
	return c.Link.Run(ctx)
}

// Do sends a single command and decodes the reply, without retry.
func (c *Client) Do(ctx context.Context, cmd Command) (uint32, error) {
	reply, err := c.Link.Transact(ctx, cmd.Frame())
	if err != nil {
		return 0, err
	}
	return DecodeReply(reply)
}

// ReadRegister reads a register.
func (c *Client) ReadRegister(ctx context.Context, address uint16) (value uint32, err error) {
	err = c.retry(ctx, ReadCommand(address), func() (err error) {
		value, err = c.Do(ctx, ReadCommand(address))
		return
	})
	return
}

// WriteRegister writes a register. The reply must be a valid frame,
// its value is ignored.
func (c *Client) WriteRegister(ctx context.Context, address uint16, value uint32) error {
	cmd := WriteCommand(address, value)
	return c.retry(ctx, cmd, func() error {
		_, err := c.Do(ctx, cmd)
		return err
	})
}

// WriteVerify writes a register and reads it back, repeating both
// until the values match or retries are exhausted.
func (c *Client) WriteVerify(ctx context.Context, address uint16, value uint32) error {
	cmd := WriteCommand(address, value)
	return c.retry(ctx, cmd, func() error {
		if _, err := c.Do(ctx, cmd); err != nil {
			return err
		}
		actual, err := c.Do(ctx, ReadCommand(address))
		if err != nil {
			return err
		}
		if actual != value {
			return &VerifyError{Address: address, Expected: value, Actual: actual}
		}
		return nil
	})
}

func (c *Client) retry(ctx context.Context, cmd Command, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) {
			return err
		}
		if attempt >= c.Retries {
			glog.Warningf("%s failed after %d attempts: %v", cmd, attempt+1, err)
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		glog.V(2).Infof("%s attempt %d: %v", cmd, attempt+1, err)
	}
}
