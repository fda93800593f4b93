package aws

import (
	"context"
	"fmt"

	"github.com/ibraheemcisse/ekstack/internal/util/retry"
)

// Outcome records what an ensure operation did.
type Outcome string

const (
	// OutcomeCreated means the resource did not exist and was created.
	OutcomeCreated Outcome = "created"
	// OutcomeUnchanged means the resource already matched the request.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeUpdated means the resource existed but was modified to match.
	OutcomeUpdated Outcome = "updated"
	// OutcomeAdopted means a concurrent run created the resource first.
	OutcomeAdopted Outcome = "adopted"
)

// EnsureResult is the outcome of an EnsureOperation.
type EnsureResult[T any] struct {
	Resource T
	Outcome  Outcome
}

// EnsureOperation looks a resource up, creates it when absent, and
// reconciles it when present. T is the domain type the operation yields.
//
// Get reports found=false when the resource does not exist; AWS not-found
// errors must be translated, not returned. Create performs the mutation.
// Validate (optional) rejects an existing resource that cannot be reused,
// for example a VPC with the wrong CIDR. Update (optional) reconciles
// drift on an existing resource and reports whether it changed anything.
// Wait (optional) blocks until a freshly created resource is usable.
type EnsureOperation[T any] struct {
	Name         string
	ResourceType string

	Get      func(ctx context.Context) (T, bool, error)
	Create   func(ctx context.Context) (T, error)
	Validate func(resource T) error
	Update   func(ctx context.Context, existing T) (T, bool, error)
	Wait     func(ctx context.Context, resource T) (T, error)
}

// Execute runs the ensure operation. Lookups and mutations are retried on
// transient API failures using the client's backoff settings; a create
// that loses a race to a concurrent run falls back to adopting the
// existing resource.
func (op *EnsureOperation[T]) Execute(ctx context.Context, client *RealClient) (*EnsureResult[T], error) {
	existing, found, err := op.get(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("checking for existing %s %q: %w", op.ResourceType, op.Name, err)
	}

	if found {
		if op.Validate != nil {
			if err := op.Validate(existing); err != nil {
				return nil, fmt.Errorf("existing %s %q cannot be reused: %w", op.ResourceType, op.Name, err)
			}
		}
		if op.Update != nil {
			updated, changed, err := op.Update(ctx, existing)
			if err != nil {
				return nil, fmt.Errorf("updating %s %q: %w", op.ResourceType, op.Name, err)
			}
			if changed {
				return &EnsureResult[T]{Resource: updated, Outcome: OutcomeUpdated}, nil
			}
		}
		return &EnsureResult[T]{Resource: existing, Outcome: OutcomeUnchanged}, nil
	}

	var created T
	err = client.retryDo(ctx, func() error {
		var cerr error
		created, cerr = op.Create(ctx)
		if cerr != nil && IsAlreadyExists(cerr) {
			return retry.Fatal(cerr)
		}
		return classify(cerr)
	})
	if err != nil {
		if IsAlreadyExists(err) {
			adopted, found, gerr := op.get(ctx, client)
			if gerr == nil && found {
				return &EnsureResult[T]{Resource: adopted, Outcome: OutcomeAdopted}, nil
			}
		}
		return nil, fmt.Errorf("creating %s %q: %w", op.ResourceType, op.Name, err)
	}

	if op.Wait != nil {
		created, err = op.Wait(ctx, created)
		if err != nil {
			return nil, fmt.Errorf("waiting for %s %q: %w", op.ResourceType, op.Name, err)
		}
	}

	return &EnsureResult[T]{Resource: created, Outcome: OutcomeCreated}, nil
}

func (op *EnsureOperation[T]) get(ctx context.Context, client *RealClient) (T, bool, error) {
	var (
		resource T
		found    bool
	)
	err := client.retryDo(ctx, func() error {
		var gerr error
		resource, found, gerr = op.Get(ctx)
		return classify(gerr)
	})
	return resource, found, err
}

// DeleteOperation removes a resource if it exists. Deleting an absent
// resource is a no-op, so destroy runs can be repeated safely.
type DeleteOperation[T any] struct {
	Name         string
	ResourceType string

	Get    func(ctx context.Context) (T, bool, error)
	Delete func(ctx context.Context, resource T) error
	// Wait (optional) blocks until the deletion has finished, for
	// resources AWS tears down asynchronously.
	Wait func(ctx context.Context) error
}

// Execute runs the delete operation. Conflicts from still-draining
// dependents are retried, so teardown tolerates AWS's eventual ordering.
func (op *DeleteOperation[T]) Execute(ctx context.Context, client *RealClient) error {
	var (
		existing T
		found    bool
	)
	err := client.retryDo(ctx, func() error {
		var gerr error
		existing, found, gerr = op.Get(ctx)
		return classify(gerr)
	})
	if err != nil {
		return fmt.Errorf("checking for %s %q before deletion: %w", op.ResourceType, op.Name, err)
	}
	if !found {
		return nil
	}

	err = client.retryDo(ctx, func() error {
		derr := op.Delete(ctx, existing)
		if derr != nil && IsNotFound(derr) {
			return nil
		}
		return classify(derr)
	})
	if err != nil {
		return fmt.Errorf("deleting %s %q: %w", op.ResourceType, op.Name, err)
	}

	if op.Wait != nil {
		if err := op.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for %s %q to be deleted: %w", op.ResourceType, op.Name, err)
		}
	}
	return nil
}
