package main

import (
	"context"
	"fmt"
	"time"

	"github.com/devbenja/colegio/core/school"
)

var (
	seedGrades = []school.Grade{
		{Name: "1°", Description: "Primer año de secundaria"},
		{Name: "2°", Description: "Segundo año de secundaria"},
		{Name: "3°", Description: "Tercer año de secundaria"},
		{Name: "4°", Description: "Cuarto año de secundaria"},
		{Name: "5°", Description: "Quinto año de secundaria"},
		{Name: "6°", Description: "Sexto año de secundaria"},
	}

	seedSubjects = []school.Subject{
		{Name: "Matemáticas", Description: "Álgebra y Geometría"},
		{Name: "Ciencias", Description: "Biología, Física y Química"},
		{Name: "Historia", Description: "Historia Universal y de México"},
		{Name: "Geografía", Description: "Geografía física y humana"},
		{Name: "Español", Description: "Lengua y Literatura"},
		{Name: "Inglés", Description: "Idioma inglés"},
		{Name: "Educación Física", Description: "Deportes y actividad física"},
		{Name: "Arte", Description: "Arte y cultura"},
	}
)

// seedCatalog loads the default grades and subjects. Existing rows are
// left untouched.
func (cli *commandLine) seedCatalog() error {
	ctx := context.Background()
	now := time.Now().UTC()

	for _, grd := range seedGrades {
		grd.IsActive = true
		grd.CreatedAt = now
		grd.UpdatedAt = now
		if _, err := cli.schoolRepo.CreateGrade(ctx, grd); err != nil {
			if err == school.ErrGradeExists {
				continue
			}
			return err
		}
		fmt.Printf("grade created: %s\n", grd.Name)
	}

	for _, sub := range seedSubjects {
		sub.IsActive = true
		sub.CreatedAt = now
		sub.UpdatedAt = now
		if _, err := cli.schoolRepo.CreateSubject(ctx, sub); err != nil {
			if err == school.ErrSubjectExists {
				continue
			}
			return err
		}
		fmt.Printf("subject created: %s\n", sub.Name)
	}
	return nil
}
