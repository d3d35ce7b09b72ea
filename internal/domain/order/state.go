package order

// OrderState implements the state pattern for order lifecycle transitions.
type OrderState interface {
	Status() Status
	OnDelivered(o *Order) (OrderState, error)
	OnFinished(o *Order) (OrderState, error)
	OnCancelled(o *Order) (OrderState, error)
}

func stateFor(s Status) OrderState {
	switch s {
	case StatusPending:
		return pendingState{}
	case StatusDelivered:
		return deliveredState{}
	case StatusFinished:
		return finishedState{}
	case StatusCancelled:
		return cancelledState{}
	default:
		return nil
	}
}

// TransitionTo applies the lifecycle rules: PENDING may become DELIVERED or
// CANCELLED, DELIVERED may become FINISHED, everything else is rejected.
func (o *Order) TransitionTo(target Status) error {
	current := stateFor(o.Status)
	if current == nil {
		return ErrInvalidStatus
	}

	var (
		next OrderState
		err  error
	)
	switch target {
	case StatusDelivered:
		next, err = current.OnDelivered(o)
	case StatusFinished:
		next, err = current.OnFinished(o)
	case StatusCancelled:
		next, err = current.OnCancelled(o)
	default:
		err = ErrInvalidStatus
	}
	if err != nil {
		return err
	}

	o.Status = next.Status()
	o.touch()
	return nil
}

type pendingState struct{}

func (pendingState) Status() Status { return StatusPending }

func (pendingState) OnDelivered(*Order) (OrderState, error) { return deliveredState{}, nil }

func (pendingState) OnFinished(*Order) (OrderState, error) { return nil, ErrInvalidStatus }

func (pendingState) OnCancelled(*Order) (OrderState, error) { return cancelledState{}, nil }

type deliveredState struct{}

func (deliveredState) Status() Status { return StatusDelivered }

func (deliveredState) OnDelivered(*Order) (OrderState, error) { return nil, ErrInvalidStatus }

func (deliveredState) OnFinished(*Order) (OrderState, error) { return finishedState{}, nil }

func (deliveredState) OnCancelled(*Order) (OrderState, error) { return nil, ErrInvalidStatus }

type finishedState struct{}

func (finishedState) Status() Status { return StatusFinished }

func (finishedState) OnDelivered(*Order) (OrderState, error) { return nil, ErrInvalidStatus }

func (finishedState) OnFinished(*Order) (OrderState, error) { return nil, ErrInvalidStatus }

func (finishedState) OnCancelled(*Order) (OrderState, error) { return nil, ErrInvalidStatus }

type cancelledState struct{}

func (cancelledState) Status() Status { return StatusCancelled }

func (cancelledState) OnDelivered(*Order) (OrderState, error) { return nil, ErrInvalidStatus }

func (cancelledState) OnFinished(*Order) (OrderState, error) { return nil, ErrInvalidStatus }

func (cancelledState) OnCancelled(*Order) (OrderState, error) { return nil, ErrInvalidStatus }
