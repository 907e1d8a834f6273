package usecase

import (
	"context"
	"errors"
	"fmt"

	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/domain/entity"
	"mentalwell/internal/domain/repository"
	"mentalwell/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var ErrIncompleteAssessment = errors.New("every question must be answered")

const (
	maxOptionScore    = 3
	historyLimit      = 20
	highThreshold     = 70
	moderateThreshold = 40
)

type question struct {
	id       int
	category string
	text     string
	options  []option
}

type option struct {
	value int
	label string
	score int
}

func frequencyOptions(labels ...string) []option {
	opts := make([]option, len(labels))
	for i, label := range labels {
		opts[i] = option{value: i, label: label, score: i}
	}
	return opts
}

var (
	frequency  = []string{"Nunca", "Varios días", "Más de la mitad de los días", "Casi todos los días"}
	categories = []string{"Estado de Ánimo", "Ansiedad", "Estrés Laboral", "Sueño y Energía", "Relaciones Sociales", "Autocuidado"}
)

var questions = []question{
	{0, "Estado de Ánimo", "¿Con qué frecuencia te has sentido desanimado, deprimido o sin esperanza en las últimas 2 semanas?", frequencyOptions(frequency...)},
	{1, "Estado de Ánimo", "¿Con qué frecuencia has tenido poco interés o placer en hacer cosas?", frequencyOptions(frequency...)},
	{2, "Ansiedad", "¿Te has sentido nervioso, ansioso o muy alterado?", frequencyOptions(frequency...)},
	{3, "Ansiedad", "¿Has tenido dificultades para relajarte o controlar tus preocupaciones?", frequencyOptions(frequency...)},
	{4, "Estrés Laboral", "¿Sientes que tu trabajo te genera más estrés del que puedes manejar?", frequencyOptions("Nunca", "Ocasionalmente", "Frecuentemente", "Constantemente")},
	{5, "Estrés Laboral", "¿Te resulta difícil desconectarte del trabajo al final del día?", frequencyOptions("Nunca", "Ocasionalmente", "Frecuentemente", "Siempre")},
	{6, "Sueño y Energía", "¿Has tenido problemas para dormir o mantenerte dormido?", frequencyOptions(frequency...)},
	{7, "Sueño y Energía", "¿Te sientes cansado o con poca energía durante el día?", frequencyOptions(frequency...)},
	// Reverse-scored: more support means less risk.
	{8, "Relaciones Sociales", "¿Sientes que tienes suficiente apoyo social en tu vida?", []option{
		{value: 3, label: "Nunca", score: 3},
		{value: 2, label: "Ocasionalmente", score: 2},
		{value: 1, label: "Frecuentemente", score: 1},
		{value: 0, label: "Siempre", score: 0},
	}},
	{9, "Autocuidado", "¿Qué tan bien cuidas de tu bienestar físico y mental?", frequencyOptions("Muy bien", "Bien", "Regular", "Mal")},
}

var levelDescriptions = map[entity.RiskLevel]string{
	entity.RiskLow:      "Tu bienestar mental parece estar en un buen estado general.",
	entity.RiskModerate: "Hay algunas áreas que podrían necesitar atención y cuidado.",
	entity.RiskHigh:     "Podrías beneficiarte significativamente del apoyo profesional.",
}

type AssessmentUsecase interface {
	Questions() []dto.AssessmentQuestion
	Submit(ctx context.Context, userID uuid.UUID, req *dto.SubmitAssessmentRequest) (*dto.AssessmentResultResponse, error)
	History(ctx context.Context, userID uuid.UUID) ([]dto.AssessmentResultResponse, error)
}

type assessmentUsecase struct {
	log            *logrus.Logger
	assessmentRepo repository.AssessmentRepository
	audit          service.AuditService
}

func NewAssessmentUsecase(log *logrus.Logger, assessmentRepo repository.AssessmentRepository, audit service.AuditService) AssessmentUsecase {
	return &assessmentUsecase{
		log:            log,
		assessmentRepo: assessmentRepo,
		audit:          audit,
	}
}

func (u *assessmentUsecase) Questions() []dto.AssessmentQuestion {
	out := make([]dto.AssessmentQuestion, len(questions))
	for i, q := range questions {
		opts := make([]dto.AssessmentOption, len(q.options))
		for j, o := range q.options {
			opts[j] = dto.AssessmentOption{Value: o.value, Label: o.label}
		}
		out[i] = dto.AssessmentQuestion{ID: q.id, Category: q.category, Question: q.text, Options: opts}
	}
	return out
}

func (u *assessmentUsecase) Submit(ctx context.Context, userID uuid.UUID, req *dto.SubmitAssessmentRequest) (*dto.AssessmentResultResponse, error) {
	result, err := Score(req.Answers)
	if err != nil {
		return nil, err
	}

	assessment := &entity.SelfAssessment{
		UserID:     userID,
		Kind:       entity.AssessmentKindSelfDiagnosis,
		Answers:    req.Answers,
		TotalScore: result.TotalScore,
		Percentage: result.Percentage,
		RiskLevel:  result.Level,
	}

	if err := u.assessmentRepo.Create(ctx, assessment); err != nil {
		u.log.Warnf("Failed to store assessment: %+v", err)
		return nil, err
	}

	u.audit.LogCreate(ctx, &userID, entity.AuditActionAssessment, "assessment", assessment.ID.String(), map[string]interface{}{
		"nivel_riesgo": assessment.RiskLevel,
	})

	result.ID = assessment.ID
	result.TakenAt = assessment.TakenAt
	return result, nil
}

func (u *assessmentUsecase) History(ctx context.Context, userID uuid.UUID) ([]dto.AssessmentResultResponse, error) {
	assessments, err := u.assessmentRepo.ListByUser(ctx, userID, historyLimit)
	if err != nil {
		u.log.Warnf("Failed to list assessments: %+v", err)
		return nil, err
	}

	history := make([]dto.AssessmentResultResponse, 0, len(assessments))
	for _, a := range assessments {
		result, err := Score(a.Answers)
		if err != nil {
			// Stored answers predate the current questionnaire.
			result = &dto.AssessmentResultResponse{
				TotalScore:  a.TotalScore,
				MaxScore:    len(questions) * maxOptionScore,
				Percentage:  a.Percentage,
				Level:       a.RiskLevel,
				Description: levelDescriptions[a.RiskLevel],
			}
		}
		result.ID = a.ID
		result.TakenAt = a.TakenAt
		history = append(history, *result)
	}
	return history, nil
}

// Score grades a complete answer set. Answers map question id to option value.
func Score(answers map[int]int) (*dto.AssessmentResultResponse, error) {
	if len(answers) != len(questions) {
		return nil, ErrIncompleteAssessment
	}

	categoryScore := make(map[string]int, len(categories))
	categoryMax := make(map[string]int, len(categories))
	total := 0

	for _, q := range questions {
		value, ok := answers[q.id]
		if !ok {
			return nil, ErrIncompleteAssessment
		}
		score, ok := q.scoreOf(value)
		if !ok {
			return nil, newValidationError(fmt.Sprintf("answers.%d", q.id), "Opción inválida")
		}
		total += score
		categoryScore[q.category] += score
		categoryMax[q.category] += maxOptionScore
	}

	maxScore := len(questions) * maxOptionScore
	percentage := percentOf(total, maxScore)

	level := entity.RiskLow
	switch {
	case percentage.GreaterThanOrEqual(decimal.NewFromInt(highThreshold)):
		level = entity.RiskHigh
	case percentage.GreaterThanOrEqual(decimal.NewFromInt(moderateThreshold)):
		level = entity.RiskModerate
	}

	result := &dto.AssessmentResultResponse{
		TotalScore:  total,
		MaxScore:    maxScore,
		Percentage:  percentage.Round(2),
		Level:       level,
		Description: levelDescriptions[level],
	}
	for _, c := range categories {
		result.Categories = append(result.Categories, dto.CategoryScore{
			Category:   c,
			Score:      categoryScore[c],
			MaxScore:   categoryMax[c],
			Percentage: percentOf(categoryScore[c], categoryMax[c]).Round(2),
		})
	}
	return result, nil
}

func (q question) scoreOf(value int) (int, bool) {
	for _, o := range q.options {
		if o.value == value {
			return o.score, true
		}
	}
	return 0, false
}

func percentOf(score, outOf int) decimal.Decimal {
	if outOf == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(score)).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(int64(outOf)))
}
