package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Store --dir ../domain/state --output domain/state --outpkg statemock --filename store_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name InjurySource --dir ../usecase --output usecase --outpkg usecasemock --filename injury_source_mock.go
