package callbacks

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/llm-d-incubation/training-resumption/internal/logging"
	"github.com/llm-d-incubation/training-resumption/internal/trainstate"
)

var _ = Describe("RateRescaler", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = logging.IntoContext(context.Background(), logging.NewTestLogger())
	})

	Context("with a single optimizer group", func() {
		It("should rescale the learning rate and derive weight decay from the new rate", func() {
			group := trainstate.NewGroup(0.1, 0.5)
			state := trainstate.NewState(
				[]trainstate.Optimizer{trainstate.NewOptimizer(group)},
				nil,
				trainstate.NewModel(),
			)

			err := NewRateRescaler(0.5, 0.1).OnRunStart(ctx, state)
			Expect(err).NotTo(HaveOccurred())
			Expect(group.LearningRate()).To(BeNumerically("~", 0.05, 1e-12))
			Expect(group.WeightDecay()).To(BeNumerically("~", 0.005, 1e-12))
		})

		It("should rescale a recorded initial learning rate by the same factor", func() {
			group := trainstate.NewGroup(0.1, 0).WithInitialRate(0.2)
			state := trainstate.NewState(
				[]trainstate.Optimizer{trainstate.NewOptimizer(group)},
				nil,
				trainstate.NewModel(),
			)

			Expect(NewRateRescaler(2, 0).OnRunStart(ctx, state)).To(Succeed())
			initial, ok := group.InitialLearningRate()
			Expect(ok).To(BeTrue())
			Expect(initial).To(BeNumerically("~", 0.4, 1e-12))
		})
	})

	Context("with schedulers", func() {
		It("should rescale every base rate, order preserved", func() {
			sched := trainstate.NewScheduler(0.1, 0.01, 0.001)
			state := trainstate.NewState(
				[]trainstate.Optimizer{trainstate.NewOptimizer()},
				[]trainstate.Scheduler{sched},
				trainstate.NewModel(),
			)

			Expect(NewRateRescaler(10, 0).OnRunStart(ctx, state)).To(Succeed())
			rates := sched.BaseRates()
			Expect(rates).To(HaveLen(3))
			Expect(rates[0]).To(BeNumerically("~", 1.0, 1e-12))
			Expect(rates[1]).To(BeNumerically("~", 0.1, 1e-12))
			Expect(rates[2]).To(BeNumerically("~", 0.01, 1e-12))
		})
	})

	Context("invoked twice", func() {
		It("should compound the scale factors", func() {
			// Intended behavior: the rescaler is run-once by contract
			// and repeated invocations multiply.
			group := trainstate.NewGroup(0.1, 0)
			state := trainstate.NewState(
				[]trainstate.Optimizer{trainstate.NewOptimizer(group)},
				nil,
				trainstate.NewModel(),
			)

			Expect(NewRateRescaler(0.5, 0).OnRunStart(ctx, state)).To(Succeed())
			Expect(NewRateRescaler(0.2, 0).OnRunStart(ctx, state)).To(Succeed())
			Expect(group.LearningRate()).To(BeNumerically("~", 0.1*0.5*0.2, 1e-12))
		})
	})

	Context("with an absent optimizer collection", func() {
		It("should fail before mutating anything", func() {
			sched := trainstate.NewScheduler(0.1)
			state := trainstate.NewState(nil, []trainstate.Scheduler{sched}, trainstate.NewModel())

			err := NewRateRescaler(2, 0).OnRunStart(ctx, state)
			Expect(err).To(MatchError(ErrMissingOptimizers))
			Expect(sched.BaseRates()).To(Equal([]float64{0.1}))
		})
	})

	Context("with an empty optimizer collection", func() {
		It("should succeed as a no-op", func() {
			state := trainstate.NewState([]trainstate.Optimizer{}, nil, trainstate.NewModel())
			Expect(NewRateRescaler(2, 0).OnRunStart(ctx, state)).To(Succeed())
		})
	})
})
