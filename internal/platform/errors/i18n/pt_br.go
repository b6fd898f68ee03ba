package i18n

var ptBRCatalog = &Catalog{
	locale: "pt-BR",
	messages: map[Code]string{
		CodeUnknown: "Algo deu errado ao rolar os dados",

		CodeDiceLex:    "Caractere inesperado {{.Char}} na posição {{.Position}}",
		CodeDiceParse:  "Expressão de dados inválida na posição {{.Position}}: esperado {{.Expected}}, encontrado {{.Found}}",
		CodeDiceBounds: "A expressão de dados excede o limite de {{.Reason}} de {{.Limit}} (recebido {{.Actual}})",

		CodeDiceDivisionByZero: "Divisão por zero: {{.Divisor}} resultou em 0",
		CodeDiceOverflow:       "O total da rolagem é grande demais na posição {{.Position}}",

		CodeSeedOutOfRange: "A semente deve ser um número inteiro entre -9223372036854775808 e 9223372036854775807",

		CodeAnalyticsScopeEmpty: "É necessário um personagem, grupo ou usuário para registrar estatísticas",
		CodeAnalyticsOrderBy:    "Não é possível ordenar estatísticas por {{.OrderBy}}",
		CodeAnalyticsFilter:     "Não é possível filtrar estatísticas com {{.Filter}}",
	},
}
