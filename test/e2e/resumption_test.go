/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package e2e

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/llm-d-incubation/training-resumption/internal/checkpoint"
	"github.com/llm-d-incubation/training-resumption/internal/config"
	"github.com/llm-d-incubation/training-resumption/internal/fixtures"
	"github.com/llm-d-incubation/training-resumption/internal/logging"
	"github.com/llm-d-incubation/training-resumption/internal/metrics"
)

const resumptionConfig = `
rescale:
  scaleFactor: 0.5
  weightDecayFraction: 0.1
freeze:
  targets:
    - lm_head.weight
`

const checkpointSnapshot = `{
  "version": 1,
  "optimizers": [
    {
      "name": "adamw",
      "param_groups": [
        {"learning_rate": 0.1, "weight_decay": 0.01, "initial_learning_rate": 0.1}
      ]
    }
  ],
  "schedulers": [
    {"name": "cosine-with-warmup", "base_rates": [0.1, 0.01]}
  ],
  "model": {
    "parameters": [
      {"name": "encoder.weight", "trainable": true},
      {"name": "lm_head.weight", "trainable": true}
    ]
  }
}`

var _ = Describe("Checkpoint resumption", func() {
	var (
		ctx     context.Context
		workDir string
	)

	BeforeEach(func() {
		ctx = logging.IntoContext(context.Background(), logging.NewTestLogger())
		workDir = GinkgoT().TempDir()
	})

	It("should apply configured callbacks to a snapshot and persist the result", func() {
		configPath := filepath.Join(workDir, "resumption.yaml")
		Expect(os.WriteFile(configPath, []byte(resumptionConfig), 0o644)).To(Succeed())
		snapPath := filepath.Join(workDir, "run.json")
		Expect(os.WriteFile(snapPath, []byte(checkpointSnapshot), 0o644)).To(Succeed())

		cfg, err := config.Load(configPath)
		Expect(err).NotTo(HaveOccurred())

		registry, err := cfg.Build(metrics.New(prometheus.NewRegistry()))
		Expect(err).NotTo(HaveOccurred())
		Expect(registry.Len()).To(Equal(2))

		snap, err := checkpoint.Load(snapPath)
		Expect(err).NotTo(HaveOccurred())

		state := snap.State()
		Expect(registry.RunStart(ctx, state)).To(Succeed())
		snap.Capture(state)
		Expect(snap.Save(snapPath)).To(Succeed())

		reloaded, err := checkpoint.Load(snapPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(reloaded.RunID).NotTo(BeEmpty())

		group := reloaded.Optimizers[0].ParamGroups[0]
		Expect(group.LearningRate).To(BeNumerically("~", 0.05, 1e-12))
		Expect(group.WeightDecay).To(BeNumerically("~", 0.005, 1e-12))
		Expect(group.InitialLearningRate).NotTo(BeNil())
		Expect(*group.InitialLearningRate).To(BeNumerically("~", 0.05, 1e-12))

		Expect(reloaded.Schedulers[0].BaseRates[0]).To(BeNumerically("~", 0.05, 1e-12))
		Expect(reloaded.Schedulers[0].BaseRates[1]).To(BeNumerically("~", 0.005, 1e-12))

		Expect(reloaded.Model.Parameters[0].Trainable).To(BeTrue())
		Expect(reloaded.Model.Parameters[1].Trainable).To(BeFalse())
	})

	It("should surface a freeze misconfiguration as a hard failure", func() {
		snapPath := filepath.Join(workDir, "run.json")
		Expect(os.WriteFile(snapPath, []byte(checkpointSnapshot), 0o644)).To(Succeed())

		cfg := config.ResumptionConfig{
			Freeze: &config.FreezeConfig{Targets: []string{"decoder.weight"}},
		}
		registry, err := cfg.Build(nil)
		Expect(err).NotTo(HaveOccurred())

		snap, err := checkpoint.Load(snapPath)
		Expect(err).NotTo(HaveOccurred())

		err = registry.RunStart(ctx, snap.State())
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("decoder.weight"))
		Expect(err.Error()).To(ContainSubstring("encoder.weight"))
	})

	It("should generate fixture datasets alongside the callbacks", func() {
		ftPath := filepath.Join(workDir, "datasets", "train.jsonl")
		n, err := fixtures.WriteTinyDataset(ftPath, fixtures.TinyDatasetOptions{Size: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))

		chatPath := filepath.Join(workDir, "datasets", "chat.jsonl")
		n, err = fixtures.WriteConversationDataset(chatPath, fixtures.ConversationDatasetOptions{
			Size:            2,
			AsConversations: true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))
	})
})
