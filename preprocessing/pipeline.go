package preprocessing

import (
	"github.com/YuminosukeSato/pumpit/core/model"
	"github.com/YuminosukeSato/pumpit/pkg/errors"
	"github.com/YuminosukeSato/pumpit/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// Step represents a single step in the pipeline.
type Step struct {
	Name      string      // Name of this step (for identification)
	Estimator interface{} // Transformer for intermediate steps, Classifier for the last
}

// Pipeline chains transformers in front of a final classifier. It
// implements model.Classifier itself, so the experiment runner treats
// a scaled model like any other.
type Pipeline struct {
	state  *model.StateManager
	logger log.Logger

	steps []Step
}

// NewPipeline creates a Pipeline from the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{
		state:  model.NewStateManager(),
		logger: log.GetLoggerWithName("Pipeline"),
		steps:  steps,
	}
}

// Steps returns the pipeline steps.
func (p *Pipeline) Steps() []Step {
	return p.steps
}

func (p *Pipeline) final() (model.Classifier, error) {
	if len(p.steps) == 0 {
		return nil, errors.NewValidationError("steps", "pipeline has no steps", 0)
	}
	last := p.steps[len(p.steps)-1]
	clf, ok := last.Estimator.(model.Classifier)
	if !ok {
		return nil, errors.NewValidationError("pipeline final step", "final step must be a classifier", last.Name)
	}
	return clf, nil
}

func (p *Pipeline) transformer(i int) (model.Transformer, error) {
	step := p.steps[i]
	tr, ok := step.Estimator.(model.Transformer)
	if !ok {
		return nil, errors.NewValidationError("pipeline step", "all intermediate steps must be transformers", step.Name)
	}
	return tr, nil
}

// Fit fits every transformer in order on the output of the previous one,
// then fits the final classifier.
func (p *Pipeline) Fit(X, y mat.Matrix) error {
	clf, err := p.final()
	if err != nil {
		return err
	}

	Xt := X
	for i := 0; i < len(p.steps)-1; i++ {
		tr, err := p.transformer(i)
		if err != nil {
			return err
		}
		if Xt, err = tr.FitTransform(Xt); err != nil {
			return errors.Wrapf(err, "failed to fit step '%s'", p.steps[i].Name)
		}
		p.logger.Debug("pipeline step fitted", log.OperationKey, log.OperationFit, "step", p.steps[i].Name)
	}

	if err := clf.Fit(Xt, y); err != nil {
		return errors.Wrapf(err, "failed to fit final step '%s'", p.steps[len(p.steps)-1].Name)
	}

	p.state.SetFitted()
	return nil
}

func (p *Pipeline) transform(X mat.Matrix) (mat.Matrix, error) {
	Xt := X
	for i := 0; i < len(p.steps)-1; i++ {
		tr, err := p.transformer(i)
		if err != nil {
			return nil, err
		}
		if Xt, err = tr.Transform(Xt); err != nil {
			return nil, errors.Wrapf(err, "failed to transform at step '%s'", p.steps[i].Name)
		}
	}
	return Xt, nil
}

// Predict transforms X and predicts with the final classifier.
func (p *Pipeline) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := p.state.RequireFitted("Pipeline", "Predict"); err != nil {
		return nil, err
	}
	Xt, err := p.transform(X)
	if err != nil {
		return nil, err
	}
	clf, _ := p.final()
	return clf.Predict(Xt)
}

// PredictProba transforms X and returns the final classifier's probabilities.
func (p *Pipeline) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := p.state.RequireFitted("Pipeline", "PredictProba"); err != nil {
		return nil, err
	}
	Xt, err := p.transform(X)
	if err != nil {
		return nil, err
	}
	clf, _ := p.final()
	return clf.PredictProba(Xt)
}

// Score returns the final classifier's accuracy on transformed X.
func (p *Pipeline) Score(X, y mat.Matrix) (float64, error) {
	if err := p.state.RequireFitted("Pipeline", "Score"); err != nil {
		return 0, err
	}
	Xt, err := p.transform(X)
	if err != nil {
		return 0, err
	}
	clf, _ := p.final()
	return clf.Score(Xt, y)
}

// Classes returns the final classifier's classes.
func (p *Pipeline) Classes() []int {
	clf, err := p.final()
	if err != nil {
		return nil
	}
	return clf.Classes()
}

// Name reports the final estimator's name, so reports read
// "LogisticRegression" whether or not the inputs were scaled.
func (p *Pipeline) Name() string {
	if len(p.steps) == 0 {
		return "Pipeline"
	}
	return model.NameOf(p.steps[len(p.steps)-1].Estimator)
}
