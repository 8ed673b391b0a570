package callbacks

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/llm-d-incubation/training-resumption/internal/metrics"
	"github.com/llm-d-incubation/training-resumption/internal/trainstate"
)

type recordingCallback struct {
	name string
	err  error
	log  *[]string
}

func (c *recordingCallback) Name() string { return c.name }

func (c *recordingCallback) OnRunStart(ctx context.Context, state trainstate.State) error {
	*c.log = append(*c.log, c.name)
	return c.err
}

func TestRegistryDispatchOrder(t *testing.T) {
	var order []string
	reg := NewRegistry(nil)
	reg.Register(&recordingCallback{name: "first", log: &order})
	reg.Register(&recordingCallback{name: "second", log: &order})

	state := trainstate.NewState([]trainstate.Optimizer{}, nil, trainstate.NewModel())
	if err := reg.RunStart(context.Background(), state); err != nil {
		t.Fatalf("Unexpected dispatch error: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("Expected ordered dispatch [first second], got %v", order)
	}
}

func TestRegistryAbortsOnFirstError(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	reg := NewRegistry(nil)
	reg.Register(&recordingCallback{name: "failing", err: boom, log: &order})
	reg.Register(&recordingCallback{name: "unreached", log: &order})

	state := trainstate.NewState([]trainstate.Optimizer{}, nil, trainstate.NewModel())
	err := reg.RunStart(context.Background(), state)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped callback error, got %v", err)
	}
	if len(order) != 1 {
		t.Errorf("Expected dispatch to abort after the failing callback, got %v", order)
	}
}

func TestRegistryRecordsMetrics(t *testing.T) {
	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)

	reg := NewRegistry(m)
	reg.Register(NewRateRescaler(0.5, 0))

	state := trainstate.NewState(
		[]trainstate.Optimizer{trainstate.NewOptimizer(trainstate.NewGroup(0.1, 0))},
		nil,
		trainstate.NewModel(),
	)
	if err := reg.RunStart(context.Background(), state); err != nil {
		t.Fatalf("Unexpected dispatch error: %v", err)
	}

	families, err := promReg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "resumption_callbacks_applied_total" {
			found = true
		}
	}
	if !found {
		t.Fatal("Expected resumption_callbacks_applied_total to be registered")
	}

	got, err := testutil.GatherAndCount(promReg, "resumption_callbacks_applied_total")
	if err != nil {
		t.Fatalf("GatherAndCount failed: %v", err)
	}
	if got != 1 {
		t.Errorf("Expected 1 callback counter series, got %d", got)
	}
}
