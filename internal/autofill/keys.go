package autofill

// Canonical profile-attribute keys. This is a closed vocabulary: the
// canonicalizer only ever emits keys listed here, never free text.
const (
	KeyFullName         = "full_name"
	KeyFirstName        = "first_name"
	KeyLastName         = "last_name"
	KeyEmail            = "email"
	KeyPhone            = "phone"
	KeyPhoneCountryCode = "phone_country_code"
	KeyAddress          = "address"
	KeyCity             = "city"
	KeyState            = "state"
	KeyPostalCode       = "postal_code"
	KeyCountry          = "country"
	KeyCurrentLocation  = "current_location"
	KeyLinkedInURL      = "linkedin_url"
	KeyGitHubURL        = "github_url"
	KeyPortfolioURL     = "portfolio_url"
	KeyWebsite          = "website"
	KeyCurrentCompany   = "current_company"
	KeyCurrentTitle     = "current_title"
	KeyYearsExperience  = "years_experience"
	KeyDesiredSalary    = "desired_salary"
	KeyHourlyRate       = "hourly_rate"
	KeyWorkAuth         = "work_authorization"
	KeyNeedsSponsorship = "requires_sponsorship"
	KeyStartDate        = "start_date"
	KeyNoticePeriod     = "notice_period"
	KeySchool           = "school"
	KeyDegree           = "degree"
	KeyFieldOfStudy     = "field_of_study"
	KeyGraduationYear   = "graduation_year"
	KeyCoverLetter      = "cover_letter"
	KeyReferralSource   = "referral_source"
	KeyPronouns         = "pronouns"
	KeyEEOGender        = "eeo_gender"
	KeyEEORace          = "eeo_race_ethnicity"
	KeyEEOVeteran       = "eeo_veteran"
	KeyEEODisability    = "eeo_disability"
)

// EEOKeys lists the sensitive categories whose auto-fill is gated behind
// operator consent.
var EEOKeys = []string{KeyEEOGender, KeyEEORace, KeyEEOVeteran, KeyEEODisability}

// CanonicalKeys is the full vocabulary in a stable order, for callers that
// enumerate the resolved value map deterministically.
var CanonicalKeys = []string{
	KeyFullName, KeyFirstName, KeyLastName, KeyEmail, KeyPhone,
	KeyPhoneCountryCode, KeyAddress, KeyCity, KeyState, KeyPostalCode,
	KeyCountry, KeyCurrentLocation, KeyLinkedInURL, KeyGitHubURL,
	KeyPortfolioURL, KeyWebsite, KeyCurrentCompany, KeyCurrentTitle,
	KeyYearsExperience, KeyDesiredSalary, KeyHourlyRate, KeyWorkAuth,
	KeyNeedsSponsorship, KeyStartDate, KeyNoticePeriod, KeySchool,
	KeyDegree, KeyFieldOfStudy, KeyGraduationYear, KeyCoverLetter,
	KeyReferralSource, KeyPronouns,
	KeyEEOGender, KeyEEORace, KeyEEOVeteran, KeyEEODisability,
}

// defaultAliases maps each canonical key to human-written label variants seen
// on real application forms. Every canonical key is additionally its own
// alias; buildAliasIndex takes care of that.
var defaultAliases = map[string][]string{
	KeyFullName: {
		"full name", "your name", "name", "legal name", "full legal name",
		"first and last name", "candidate name", "applicant name",
	},
	KeyFirstName: {
		"first name", "given name", "forename", "first", "legal first name",
		"preferred first name",
	},
	KeyLastName: {
		"last name", "family name", "surname", "last", "legal last name",
	},
	KeyEmail: {
		"email", "e-mail", "email address", "e-mail address", "work email",
		"contact email", "your email", "email id",
	},
	KeyPhone: {
		"phone", "phone number", "telephone", "mobile", "mobile number",
		"cell phone", "contact number", "telephone number", "mobile phone",
	},
	KeyPhoneCountryCode: {
		"country code", "phone country code", "dial code", "dialing code",
	},
	KeyAddress: {
		"address", "street address", "address line 1", "mailing address",
		"home address",
	},
	KeyCity: {
		"city", "town", "city of residence",
	},
	KeyState: {
		"state", "province", "state province", "state or province", "region",
	},
	KeyPostalCode: {
		"zip", "zip code", "postal code", "postcode", "zip postal code",
	},
	KeyCountry: {
		"country", "country of residence", "nation",
	},
	KeyCurrentLocation: {
		"location", "current location", "where are you located",
		"where do you live", "city state", "your location", "based in",
	},
	KeyLinkedInURL: {
		"linkedin", "linkedin url", "linkedin profile", "linkedin profile url",
		"linkedin link",
	},
	KeyGitHubURL: {
		"github", "github url", "github profile", "github link",
	},
	KeyPortfolioURL: {
		"portfolio", "portfolio url", "portfolio link", "work samples",
		"personal portfolio",
	},
	KeyWebsite: {
		"website", "personal website", "personal site", "web site", "homepage",
		"blog", "other url", "other website",
	},
	KeyCurrentCompany: {
		"current company", "company", "current employer", "employer",
		"most recent employer", "organization", "where do you work",
	},
	KeyCurrentTitle: {
		"current title", "job title", "current role", "title", "position",
		"current position", "most recent title", "role",
	},
	KeyYearsExperience: {
		"years of experience", "years experience", "experience",
		"total experience", "how many years of experience",
		"years of relevant experience",
	},
	KeyDesiredSalary: {
		"desired salary", "salary", "salary expectation", "salary expectations",
		"expected salary", "compensation expectations", "desired compensation",
		"expected compensation", "salary requirements",
	},
	KeyHourlyRate: {
		"hourly rate", "desired hourly rate", "rate per hour", "hourly pay",
	},
	KeyWorkAuth: {
		"work authorization", "are you authorized to work",
		"authorized to work in the us",
		"are you legally authorized to work in the united states",
		"legally authorized to work", "eligible to work",
	},
	KeyNeedsSponsorship: {
		"sponsorship", "require sponsorship", "visa sponsorship",
		"will you require sponsorship", "do you require sponsorship",
		"need sponsorship now or in the future",
	},
	KeyStartDate: {
		"start date", "earliest start date", "available start date",
		"when can you start", "availability", "available to start",
	},
	KeyNoticePeriod: {
		"notice period", "current notice period", "notice",
	},
	KeySchool: {
		"school", "university", "college", "institution", "school name",
		"university name", "alma mater",
	},
	KeyDegree: {
		"degree", "highest degree", "degree type", "level of education",
		"highest level of education", "education level",
	},
	KeyFieldOfStudy: {
		"field of study", "major", "area of study", "discipline",
		"concentration",
	},
	KeyGraduationYear: {
		"graduation year", "year of graduation", "graduation date",
		"expected graduation",
	},
	KeyCoverLetter: {
		"cover letter", "covering letter", "letter of interest",
		"why do you want to work here", "motivation letter",
	},
	KeyReferralSource: {
		"how did you hear about us", "how did you hear about this position",
		"referral source", "source", "how did you find us",
		"where did you hear about us",
	},
	KeyPronouns: {
		"pronouns", "preferred pronouns", "your pronouns",
	},
	KeyEEOGender: {
		"gender", "gender identity", "sex", "what is your gender",
	},
	KeyEEORace: {
		"race", "ethnicity", "race ethnicity", "race and ethnicity",
		"racial background", "what is your race", "hispanic or latino",
	},
	KeyEEOVeteran: {
		"veteran status", "veteran", "protected veteran",
		"protected veteran status", "military status",
	},
	KeyEEODisability: {
		"disability", "disability status", "do you have a disability",
		"disability self identification",
	},
}
