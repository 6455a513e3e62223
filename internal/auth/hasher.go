package auth

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var ErrHasherClosed = errors.New("hasher closed")

type hashResult struct {
	hash string
	err  error
}

type hashJob struct {
	password string
	// hash is set for comparisons; empty means generate.
	hash   string
	result chan<- hashResult
}

// Hasher runs bcrypt on a fixed pool of workers so a burst of logins or
// registrations cannot occupy every core.
type Hasher struct {
	jobs chan hashJob
	cost int

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewHasher creates and starts a new Hasher.
func NewHasher(numWorkers, cost int) *Hasher {
	if numWorkers < 1 {
		numWorkers = 1
	}
	h := &Hasher{
		jobs: make(chan hashJob),
		cost: cost,
		done: make(chan struct{}),
	}
	h.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go h.worker()
	}
	return h
}

func (h *Hasher) worker() {
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			return
		case job := <-h.jobs:
			var res hashResult
			if job.hash == "" {
				b, err := bcrypt.GenerateFromPassword([]byte(job.password), h.cost)
				res = hashResult{hash: string(b), err: err}
			} else {
				res = hashResult{err: bcrypt.CompareHashAndPassword([]byte(job.hash), []byte(job.password))}
			}
			// buffered, never blocks
			job.result <- res
		}
	}
}

func (h *Hasher) submit(ctx context.Context, job hashJob) (hashResult, error) {
	if err := ctx.Err(); err != nil {
		return hashResult{}, err
	}
	result := make(chan hashResult, 1)
	job.result = result

	select {
	case h.jobs <- job:
	case <-h.done:
		return hashResult{}, ErrHasherClosed
	case <-ctx.Done():
		return hashResult{}, ctx.Err()
	}

	select {
	case res := <-result:
		return res, nil
	case <-ctx.Done():
		return hashResult{}, ctx.Err()
	}
}

// Hash generates a bcrypt hash of password.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	res, err := h.submit(ctx, hashJob{password: password})
	if err != nil {
		return "", err
	}
	return res.hash, res.err
}

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// Compare returns nil when password matches hash. Passwords bcrypt could not
// have hashed never match, even when their first 72 bytes do.
func (h *Hasher) Compare(ctx context.Context, hash, password string) error {
	if hash == "" || len(password) > maxPasswordBytes {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	res, err := h.submit(ctx, hashJob{password: password, hash: hash})
	if err != nil {
		return err
	}
	return res.err
}

// Close stops the workers. In-flight jobs finish; later calls fail with
// ErrHasherClosed.
func (h *Hasher) Close() {
	h.closeOnce.Do(func() { close(h.done) })
	h.wg.Wait()
}
