package config

import (
	"context"
	"fmt"

	"membership-portal/internal/adapters/persistence/models"
	"membership-portal/internal/adapters/persistence/repositories"
	"membership-portal/internal/core/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Panchayaths offered by the default registration form, grouped by assembly
// constituency
var defaultPanchayaths = []domain.DependentOption{
	{ParentValue: "Vadakara", Children: []string{"Onchiyam", "Azhiyur", "Chorode", "Eramala"}},
	{ParentValue: "Koyilandy", Children: []string{"Chengottukavu", "Moodadi", "Thikkodi", "Payyoli"}},
	{ParentValue: "Balussery", Children: []string{"Ulliyeri", "Naduvannur", "Kottur", "Panangad"}},
	{ParentValue: "Perambra", Children: []string{"Menhaniam", "Changaroth", "Koothali", "Cheruvannur"}},
}

// SeedDefaultSettings seeds the default registration questions and message
// templates. Each table is only seeded while empty.
func SeedDefaultSettings(ctx context.Context, store repositories.Store) error {
	if err := seedQuestions(ctx, store); err != nil {
		return err
	}
	if err := seedMessageTemplates(ctx, store); err != nil {
		return err
	}

	logrus.Info("default settings seeded")
	return nil
}

func seedQuestions(ctx context.Context, store repositories.Store) error {
	existing, err := store.Questions().List(ctx, false)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	constituencies := make([]string, 0, len(defaultPanchayaths))
	for _, m := range defaultPanchayaths {
		constituencies = append(constituencies, m.ParentValue)
	}

	questions := []models.RegistrationQuestion{
		{
			Key:       "constituency",
			Label:     "Assembly constituency",
			FieldType: string(domain.FieldSelect),
			Options:   datatypes.NewJSONType(constituencies),
			Required:  true,
			SortOrder: 10,
		},
		{
			Key:              "panchayath",
			Label:            "Panchayath / Municipality",
			FieldType:        string(domain.FieldDependentSelect),
			DependentOn:      "constituency",
			DependentOptions: datatypes.NewJSONType(defaultPanchayaths),
			Required:         true,
			SortOrder:        20,
		},
		{
			Key:       "is_norka_member",
			Label:     "I hold a NORKA ID card",
			FieldType: string(domain.FieldCheckbox),
			SortOrder: 30,
		},
		{
			Key:               "norka_id",
			Label:             "NORKA ID number",
			FieldType:         string(domain.FieldText),
			Required:          true,
			MinLength:         6,
			MaxLength:         20,
			ValidationPattern: `^[A-Za-z0-9]+$`,
			ShowWhenField:     "is_norka_member",
			ShowWhenValue:     "true",
			SortOrder:         40,
		},
		{
			Key:       "referred_by",
			Label:     "Referred by (registration number)",
			FieldType: string(domain.FieldText),
			MaxLength: 20,
			SortOrder: 50,
		},
	}

	for i := range questions {
		questions[i].IsActive = true
		if err := store.Questions().Create(ctx, &questions[i]); err != nil {
			return fmt.Errorf("create question %s: %w", questions[i].Key, err)
		}
	}
	logrus.WithField("count", len(questions)).Info("registration questions seeded")
	return nil
}

func seedMessageTemplates(ctx context.Context, store repositories.Store) error {
	existing, err := store.Templates().List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	templates := []models.MessageTemplate{
		{
			Name:    "Renewal reminder",
			Subject: "Membership renewal for {{year}}",
			Body:    "Dear {{name}}, your membership ({{regNo}}) is due for renewal. Please submit your fee for {{year}}.",
		},
		{
			Name:    "General announcement",
			Subject: "Announcement for {{mandalam}}",
			Body:    "Dear {{name}},",
		},
	}
	for i := range templates {
		if err := store.Templates().Create(ctx, &templates[i]); err != nil {
			return fmt.Errorf("create template %s: %w", templates[i].Name, err)
		}
	}
	return nil
}
