package cerr

import (
	"github.com/apex/log"
	"github.com/cockroachdb/errors"
)

type F = log.Fields

// Context accumulates log fields that travel with an error
// until someone decides to log it
type Context struct {
	fields log.Fields
}

type Wrapper struct {
	ctx Context
	err error
}

type fieldError struct {
	cause  error
	fields log.Fields
}

func (f *fieldError) Error() string { return f.cause.Error() }
func (f *fieldError) Unwrap() error { return f.cause }
func (f *fieldError) Cause() error  { return f.cause }

func Field(key string, value any) Context {
	return Context{}.Field(key, value)
}

func Fields(fields F) Context {
	return Context{}.Fields(fields)
}

func Wrap(err error) Wrapper {
	return Context{}.Wrap(err)
}

func Error(msg string) error {
	return Context{}.Error(msg)
}

func (c Context) Field(key string, value any) Context {
	return c.Fields(F{key: value})
}

func (c Context) Fields(fields F) Context {
	merged := make(log.Fields, len(c.fields)+len(fields))
	for k, v := range c.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	return Context{fields: merged}
}

func (c Context) Wrap(err error) Wrapper {
	return Wrapper{ctx: c, err: err}
}

func (c Context) Error(msg string) error {
	return c.attach(errors.NewWithDepth(1, msg))
}

func (w Wrapper) Field(key string, value any) Wrapper {
	return Wrapper{ctx: w.ctx.Field(key, value), err: w.err}
}

func (w Wrapper) Error(msg string) error {
	return w.ctx.attach(errors.WrapWithDepth(1, w.err, msg))
}

func (c Context) attach(err error) error {
	if err == nil || len(c.fields) == 0 {
		return err
	}

	return &fieldError{cause: err, fields: c.fields}
}

// CollectFields walks the error chain and gathers every field attached along the way.
// Fields closer to the top of the chain win.
func CollectFields(err error) log.Fields {
	chain := []log.Fields{}
	for current := err; current != nil; current = errors.UnwrapOnce(current) {
		if fe, ok := current.(*fieldError); ok {
			chain = append(chain, fe.fields)
		}
	}

	collected := log.Fields{}
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i] {
			collected[k] = v
		}
	}

	return collected
}

func Logger(err error) *log.Entry {
	return log.WithFields(CollectFields(err)).WithError(err)
}

func Log(err error) {
	Logger(err).Error("Error occurred")
}
