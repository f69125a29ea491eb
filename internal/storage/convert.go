package storage

import (
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
)

func donorFromRepo(d *repository.Donor) domain.Donor {
	return domain.Donor{
		ID:               d.ID,
		NationalID:       d.NationalID,
		Name:             d.Name,
		Phone:            d.Phone,
		BirthDate:        d.BirthDate,
		Gender:           domain.Gender(d.Gender),
		Weight:           d.Weight,
		BloodType:        domain.BloodType(d.BloodType),
		ManuallyEnabled:  d.ManuallyEnabled,
		LastDonationDate: d.LastDonationDate,
		BankID:           d.BankID,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func unitFromRepo(u *repository.DonationUnit) domain.DonationUnit {
	return domain.DonationUnit{
		ID:             u.ID,
		CollectionDate: u.CollectionDate,
		Component:      domain.Component(u.Component),
		BloodType:      domain.BloodType(u.BloodType),
		Valid:          u.Valid,
		DonorID:        u.DonorID,
		SiteID:         u.SiteID,
		BankID:         u.BankID,
		ConsumedAt:     u.ConsumedAt,
		ConsumedBy:     u.ConsumedByOrderID,
	}
}

func unitsFromRepo(units []*repository.DonationUnit) []domain.DonationUnit {
	result := make([]domain.DonationUnit, len(units))
	for i, u := range units {
		result[i] = unitFromRepo(u)
	}
	return result
}

func orderFromRepo(o *repository.RequestOrder, lines []*repository.RequestLine) domain.RequestOrder {
	order := domain.RequestOrder{
		ID:         o.ID,
		HospitalID: o.HospitalID,
		BankID:     o.BankID,
		State:      domain.OrderState(o.State),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
		Lines:      make([]domain.RequestLine, len(lines)),
	}
	for i, l := range lines {
		order.Lines[i] = lineFromRepo(l)
	}
	return order
}

func lineFromRepo(l *repository.RequestLine) domain.RequestLine {
	return domain.RequestLine{
		ID:        l.ID,
		OrderID:   l.OrderID,
		BankID:    l.BankID,
		BloodType: domain.BloodType(l.BloodType),
		Component: domain.Component(l.Component),
		Quantity:  l.Quantity,
	}
}
