package testutil

// FakeClipboard stores clipboard contents in memory.
type FakeClipboard struct {
	Text string
	Err  error
}

func (c *FakeClipboard) ReadAll() (string, error) {
	if c.Err != nil {
		return "", c.Err
	}
	return c.Text, nil
}

func (c *FakeClipboard) WriteAll(text string) error {
	if c.Err != nil {
		return c.Err
	}
	c.Text = text
	return nil
}
