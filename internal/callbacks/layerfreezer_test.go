package callbacks

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/llm-d-incubation/training-resumption/internal/logging"
	"github.com/llm-d-incubation/training-resumption/internal/trainstate"
)

var _ = Describe("LayerFreezer", func() {
	var (
		ctx   context.Context
		a     *trainstate.Param
		b     *trainstate.Param
		c     *trainstate.Param
		state trainstate.State
	)

	BeforeEach(func() {
		ctx = logging.IntoContext(context.Background(), logging.NewTestLogger())
		a = trainstate.NewParam(true)
		b = trainstate.NewParam(true)
		c = trainstate.NewParam(true)
		model := trainstate.NewModel().Add("a", a).Add("b", b).Add("c", c)
		state = trainstate.NewState([]trainstate.Optimizer{}, nil, model)
	})

	Context("freezing a present, trainable layer", func() {
		It("should freeze exactly the named layer", func() {
			Expect(NewLayerFreezer("b").OnRunStart(ctx, state)).To(Succeed())
			Expect(a.Trainable()).To(BeTrue())
			Expect(b.Trainable()).To(BeFalse())
			Expect(c.Trainable()).To(BeTrue())
		})

		It("should collapse duplicate target names", func() {
			f := NewLayerFreezer("b", "b", "a")
			Expect(f.Targets()).To(Equal([]string{"a", "b"}))
			Expect(f.OnRunStart(ctx, state)).To(Succeed())
			Expect(a.Trainable()).To(BeFalse())
			Expect(b.Trainable()).To(BeFalse())
		})
	})

	Context("freezing a layer absent from the model", func() {
		It("should fail with a lookup error listing available layers", func() {
			err := NewLayerFreezer("z").OnRunStart(ctx, state)
			Expect(err).To(HaveOccurred())

			var unknown *UnknownTargetError
			Expect(errors.As(err, &unknown)).To(BeTrue())
			Expect(unknown.Name).To(Equal("z"))
			Expect(unknown.Available).To(Equal([]string{"a", "b", "c"}))
			Expect(err.Error()).To(ContainSubstring("z"))
			Expect(err.Error()).To(ContainSubstring("a, b, c"))
		})

		It("should not mutate any trainable flag", func() {
			_ = NewLayerFreezer("a", "z").OnRunStart(ctx, state)
			Expect(a.Trainable()).To(BeTrue())
		})
	})

	Context("freezing the same layer twice", func() {
		It("should fail on the second invocation only", func() {
			f := NewLayerFreezer("a")
			Expect(f.OnRunStart(ctx, state)).To(Succeed())
			Expect(f.OnRunStart(ctx, state)).To(MatchError(ErrNoParametersFrozen))
		})
	})

	Context("freezing the empty set", func() {
		It("should always fail", func() {
			Expect(NewLayerFreezer().OnRunStart(ctx, state)).To(MatchError(ErrNoParametersFrozen))
		})
	})
})
