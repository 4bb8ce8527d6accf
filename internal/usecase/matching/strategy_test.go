package matching

import (
	"testing"

	"github.com/shopspring/decimal"

	domainApp "coinlend-backend/internal/domain/application"
	domainOffer "coinlend-backend/internal/domain/offer"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(n int) *int { return &n }

func testOffer(id string) domainOffer.LoanOffer {
	return domainOffer.LoanOffer{
		OfferID:           id,
		Status:            domainOffer.StatusPublished,
		PrincipalCurrency: "USDT",
		TotalAmount:       dec("10000"),
		AvailableAmount:   dec("10000"),
		InterestRate:      dec("8"),
		TermOptions:       "12,24",
		MinLoanAmount:     dec("1000"),
		MaxLoanAmount:     dec("5000"),
	}
}

func testApp() *domainApp.LoanApplication {
	return &domainApp.LoanApplication{
		ApplicationID:   "ap1",
		PrincipalAmount: dec("3000"),
		MaxInterestRate: dec("10"),
		TermMonths:      12,
	}
}

func TestSelectStrategy(t *testing.T) {
	if got := SelectStrategy(nil, nil); got != StrategyBasic {
		t.Fatalf("no criteria: %s, want basic", got)
	}
	if got := SelectStrategy(&LenderCriteria{}, nil); got != StrategyEnhanced {
		t.Fatalf("lender criteria: %s, want enhanced", got)
	}
	if got := SelectStrategy(nil, &BorrowerCriteria{}); got != StrategyEnhanced {
		t.Fatalf("borrower criteria: %s, want enhanced", got)
	}
}

func TestFindCompatibleOffers_BasicFilters(t *testing.T) {
	cases := []struct {
		name   string
		offer  func(o *domainOffer.LoanOffer)
		app    func(a *domainApp.LoanApplication)
		wantOK bool
	}{
		{"in range, term listed, rate under ceiling", nil, nil, true},
		{"term not offered", nil, func(a *domainApp.LoanApplication) { a.TermMonths = 36 }, false},
		{"principal below min", nil, func(a *domainApp.LoanApplication) { a.PrincipalAmount = dec("500") }, false},
		{"principal above max", nil, func(a *domainApp.LoanApplication) { a.PrincipalAmount = dec("6000") }, false},
		{"principal equals min", nil, func(a *domainApp.LoanApplication) { a.PrincipalAmount = dec("1000") }, true},
		{"principal equals max", nil, func(a *domainApp.LoanApplication) { a.PrincipalAmount = dec("5000") }, true},
		{"capacity short of principal", func(o *domainOffer.LoanOffer) { o.AvailableAmount = dec("2999") }, nil, false},
		{"capacity exactly principal", func(o *domainOffer.LoanOffer) { o.AvailableAmount = dec("3000") }, nil, true},
		{"rate equals ceiling", func(o *domainOffer.LoanOffer) { o.InterestRate = dec("10") }, nil, true},
		{"rate above ceiling", func(o *domainOffer.LoanOffer) { o.InterestRate = dec("10.01") }, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := testOffer("of1")
			if tc.offer != nil {
				tc.offer(&o)
			}
			a := testApp()
			if tc.app != nil {
				tc.app(a)
			}
			got := FindCompatibleOffers(StrategyBasic, a, []domainOffer.LoanOffer{o}, "", nil, nil)
			if ok := len(got) == 1; ok != tc.wantOK {
				t.Fatalf("compatible = %v, want %v", ok, tc.wantOK)
			}
		})
	}
}

func TestFindCompatibleOffers_PreservesInputOrder(t *testing.T) {
	offers := []domainOffer.LoanOffer{testOffer("of1"), testOffer("of2"), testOffer("of3")}
	offers[1].InterestRate = dec("11") // filtered by the basic rate ceiling

	got := FindCompatibleOffers(StrategyBasic, testApp(), offers, "", nil, nil)
	if len(got) != 2 || got[0].Offer.OfferID != "of1" || got[1].Offer.OfferID != "of3" {
		ids := make([]string, 0, len(got))
		for _, c := range got {
			ids = append(ids, c.Offer.OfferID)
		}
		t.Fatalf("order = %v, want [of1 of3]", ids)
	}
}

func TestFindCompatibleOffers_TargetOfferRestricts(t *testing.T) {
	offers := []domainOffer.LoanOffer{testOffer("of1"), testOffer("of2")}

	got := FindCompatibleOffers(StrategyBasic, testApp(), offers, "of2", nil, nil)
	if len(got) != 1 || got[0].Offer.OfferID != "of2" {
		t.Fatalf("targeted result = %+v, want only of2", got)
	}
}

func TestFindCompatibleOffers_LenderCriteria(t *testing.T) {
	cases := []struct {
		name   string
		lc     *LenderCriteria
		offer  func(o *domainOffer.LoanOffer)
		wantOK bool
	}{
		{"duration sets overlap", &LenderCriteria{DurationOptions: []int{12, 36}}, nil, true},
		{"duration sets disjoint", &LenderCriteria{DurationOptions: []int{36, 48}}, nil, false},
		{"pinned rate within epsilon", &LenderCriteria{FixedInterestRate: decPtr("8.001")}, nil, true},
		{"pinned rate beyond epsilon", &LenderCriteria{FixedInterestRate: decPtr("8.002")}, nil, false},
		{"principal ranges overlap", &LenderCriteria{MinPrincipal: decPtr("4000"), MaxPrincipal: decPtr("8000")}, nil, true},
		{"principal ranges disjoint high", &LenderCriteria{MinPrincipal: decPtr("6000"), MaxPrincipal: decPtr("8000")}, nil, false},
		{"principal ranges disjoint low", &LenderCriteria{MinPrincipal: decPtr("100"), MaxPrincipal: decPtr("900")}, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := testOffer("of1")
			if tc.offer != nil {
				tc.offer(&o)
			}
			got := FindCompatibleOffers(StrategyEnhanced, testApp(), []domainOffer.LoanOffer{o}, "", tc.lc, nil)
			if ok := len(got) == 1; ok != tc.wantOK {
				t.Fatalf("compatible = %v, want %v", ok, tc.wantOK)
			}
		})
	}
}

func TestFindCompatibleOffers_BorrowerCriteria(t *testing.T) {
	cases := []struct {
		name   string
		bc     *BorrowerCriteria
		offer  func(o *domainOffer.LoanOffer)
		wantOK bool
	}{
		{"fixed duration offered", &BorrowerCriteria{FixedDuration: intPtr(24)}, nil, true},
		{"fixed duration not offered", &BorrowerCriteria{FixedDuration: intPtr(18)}, nil, false},
		{"fixed principal inside range", &BorrowerCriteria{FixedPrincipalAmount: decPtr("4000")}, nil, true},
		{"fixed principal outside advertised range", &BorrowerCriteria{FixedPrincipalAmount: decPtr("5500")}, nil, false},
		{
			"fixed principal beyond remaining capacity",
			&BorrowerCriteria{FixedPrincipalAmount: decPtr("4000")},
			func(o *domainOffer.LoanOffer) { o.AvailableAmount = dec("3500") },
			false,
		},
		{"rate ceiling respected", &BorrowerCriteria{MaxInterestRate: decPtr("8")}, nil, true},
		{"rate ceiling exceeded", &BorrowerCriteria{MaxInterestRate: decPtr("7.5")}, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := testOffer("of1")
			if tc.offer != nil {
				tc.offer(&o)
			}
			got := FindCompatibleOffers(StrategyEnhanced, testApp(), []domainOffer.LoanOffer{o}, "", nil, tc.bc)
			if ok := len(got) == 1; ok != tc.wantOK {
				t.Fatalf("compatible = %v, want %v", ok, tc.wantOK)
			}
		})
	}
}

func TestFindCompatibleOffers_InstitutionPreferenceDoesNotReorder(t *testing.T) {
	individual := testOffer("of1")
	individual.LenderType = domainOffer.LenderIndividual
	institution := testOffer("of2")
	institution.LenderType = domainOffer.LenderInstitution

	bc := &BorrowerCriteria{PreferInstitutionalLenders: true}
	got := FindCompatibleOffers(StrategyEnhanced, testApp(), []domainOffer.LoanOffer{individual, institution}, "", nil, bc)
	if len(got) != 2 || got[0].Offer.OfferID != "of1" || got[1].Offer.OfferID != "of2" {
		t.Fatalf("preference must not reorder candidates: %+v", got)
	}
}
