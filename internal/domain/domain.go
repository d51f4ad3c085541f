package domain

import (
	"github.com/zhiyuanbang/gaokao-backend/internal/domain/student"
	"github.com/zhiyuanbang/gaokao-backend/internal/domain/volunteer"
)

type Profile = student.Profile

type Choice = volunteer.Choice
type ScoreLine = volunteer.ScoreLine
type PartitionKey = volunteer.PartitionKey
type SubjectSet = volunteer.SubjectSet

type ChoiceItem = volunteer.ChoiceItem
type TargetGroup = volunteer.TargetGroup
type GroupView = volunteer.GroupView
type VolunteerList = volunteer.List
