package models

type Role string // Роль актора, проверяется один раз на границе операции

const (
	ClientRole     Role = "client"     // Заказчик: публикует проекты, отправляет офферы
	FreelancerRole Role = "freelancer" // Исполнитель: подаёт предложения, отвечает на офферы
)
